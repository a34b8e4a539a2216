package schedule

import (
	"fmt"
	"time"

	"tablebook/internal/models"
)

// ValidationError reports malformed or missing request input. Not retryable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ClosedError means the venue is closed on the requested date. NextOpenDate
// and OpensAt carry a suggestion when a bounded forward search found one.
type ClosedError struct {
	Date         time.Time
	Reason       string
	NextOpenDate time.Time
	OpensAt      string
}

func (e *ClosedError) Error() string {
	if e.NextOpenDate.IsZero() {
		return fmt.Sprintf("venue closed on %s", e.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("venue closed on %s, next open %s at %s",
		e.Date.Format("2006-01-02"), e.NextOpenDate.Format("2006-01-02"), e.OpensAt)
}

// InsufficientWindowError means the requested duration does not fit the
// entire open window, so no start time suggestion is possible.
type InsufficientWindowError struct {
	AvailableMinutes int
	RequiredMinutes  int
}

func (e *InsufficientWindowError) Error() string {
	return fmt.Sprintf("insufficient open window: %d minutes available, %d required",
		e.AvailableMinutes, e.RequiredMinutes)
}

// BoundaryError means the requested time falls outside [open, lastEntry].
// Suggestion is the nearest valid boundary.
type BoundaryError struct {
	Requested  string
	Suggestion string
	Reason     string // "before_open" or "after_last_entry"
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("requested time %s rejected (%s), nearest valid %s",
		e.Requested, e.Reason, e.Suggestion)
}

// ConflictError means no table could hold the interval. It carries the
// blocking reservations and, when computed, ranked alternatives.
type ConflictError struct {
	Conflicts    []models.ConflictDetail
	Alternatives []models.AlternativeSlot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("no table available: %d conflicting reservations, %d alternatives",
		len(e.Conflicts), len(e.Alternatives))
}

// TransientStorageError wraps a failed storage round trip. Retryable by the
// caller; the engine never books through one of these.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}
