package database

import "errors"

var (
	// ErrSlotTaken means the in-transaction re-check found an overlap: a
	// competing writer committed between the caller's check and this insert.
	// The caller may retry the whole allocation once.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrConcurrentModification means a version-guarded update matched no
	// row: someone else changed the reservation first.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	ErrNotFound = errors.New("not found")

	ErrPastDate   = errors.New("date is in the past")
	ErrDateTooFar = errors.New("date is too far in the future")
)
