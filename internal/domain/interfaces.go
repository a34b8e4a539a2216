package domain

import (
	"context"
	"time"

	"tablebook/internal/models"
)

// Store is the storage collaborator of the scheduling core. Implementations
// must honor the iteration-order contracts noted on the list methods: the
// order in which candidates come back decides which table or slot is offered.
type Store interface {
	// Tables
	// ListTablesByCapacity returns active tables with capacity in
	// [minCapacity, maxCapacity], ordered capacity ascending then table
	// number ascending. The order is a contract, not a detail.
	ListTablesByCapacity(ctx context.Context, minCapacity, maxCapacity int) ([]*models.Table, error)
	ListTables(ctx context.Context) ([]*models.Table, error)
	GetTable(ctx context.Context, id int64) (*models.Table, error)
	CreateTable(ctx context.Context, table *models.Table) error
	UpdateTable(ctx context.Context, table *models.Table) error
	DeactivateTable(ctx context.Context, id int64) error

	// Reservations
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	// ListActiveReservations returns pending/confirmed reservations for a
	// table and date, excluding excludeID when non-zero, ordered by start.
	ListActiveReservations(ctx context.Context, tableID int64, date time.Time, excludeID int64) ([]*models.Reservation, error)
	ListActiveReservationsForTables(ctx context.Context, tableIDs []int64, date time.Time) ([]*models.Reservation, error)
	ListReservationsByDate(ctx context.Context, date time.Time) ([]*models.Reservation, error)
	ListReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
	// CreateReservationChecked re-runs the overlap check and inserts inside
	// one transaction; returns ErrSlotTaken when a competing writer won.
	CreateReservationChecked(ctx context.Context, r *models.Reservation) error
	// RescheduleReservationChecked re-checks excluding the reservation's own
	// id and applies the change, all inside one transaction scope.
	RescheduleReservationChecked(ctx context.Context, r *models.Reservation, fromVersion int64) error
	UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error

	// Hours and settings. Always read live: operators edit these at runtime.
	GetWeeklyHours(ctx context.Context, weekday int) (*models.BusinessHours, error)
	SetWeeklyHours(ctx context.Context, hours *models.BusinessHours) error
	GetHoursException(ctx context.Context, date time.Time) (*models.HoursException, error)
	SetHoursException(ctx context.Context, exc *models.HoursException) error
	DeleteHoursException(ctx context.Context, date time.Time) error
	GetDefaultDuration(ctx context.Context) (int, error)
	SetDefaultDuration(ctx context.Context, minutes int) error
}

// SessionRepository keeps booking drafts and rate-limit counters for the
// interactive flows.
type SessionRepository interface {
	GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error)
	SaveDraft(ctx context.Context, draft *models.BookingDraft) error
	ClearDraft(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
