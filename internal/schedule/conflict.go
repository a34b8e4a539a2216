package schedule

import (
	"context"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"
)

// ConflictChecker decides whether a candidate interval overlaps any active
// reservation on a table. Storage errors propagate so callers fail closed:
// a booking is only allowed after an explicit conflict-free check.
type ConflictChecker struct {
	store domain.Store
	hours *HoursResolver
	now   func() time.Time
}

func NewConflictChecker(store domain.Store) *ConflictChecker {
	return &ConflictChecker{store: store, hours: NewHoursResolver(store), now: time.Now}
}

// ConflictResult lists every blocking reservation for diagnostics.
type ConflictResult struct {
	Valid     bool
	Conflicts []models.ConflictDetail
}

// Check tests the interval [startMin, startMin+durationMin) against all
// active reservations on (tableID, date), skipping excludeID when non-zero.
// When the date's window crosses midnight, both the candidate and the stored
// starts are lifted into the continuous frame first: an overnight 23:00
// booking must block a 00:30 request on the same business date.
// For same-day requests a reservation currently in progress also blocks any
// candidate starting before its computed end, even when the generic interval
// test would not trigger; this guards against "now" having drifted past a
// nominal boundary between check and insert.
func (c *ConflictChecker) Check(ctx context.Context, tableID int64, date time.Time, startMin, durationMin int, excludeID int64) (*ConflictResult, error) {
	window, err := c.hours.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	reservations, err := c.store.ListActiveReservations(ctx, tableID, date, excludeID)
	if err != nil {
		return nil, &TransientStorageError{Op: "list active reservations", Err: err}
	}

	lifted := liftPastMidnight(startMin, window)
	var conflicts []models.ConflictDetail
	seen := make(map[int64]bool)
	for _, r := range reservations {
		if Overlaps(lifted, durationMin, liftPastMidnight(r.StartMin, window), r.DurationMin) {
			conflicts = append(conflicts, conflictDetail(r))
			seen[r.ID] = true
		}
	}

	now := c.now()
	if sameDay(date, now) {
		nowMin := now.Hour()*60 + now.Minute()
		for _, r := range reservations {
			if seen[r.ID] {
				continue
			}
			if r.StartMin <= nowMin && nowMin < r.EndMin() && startMin < r.EndMin() {
				conflicts = append(conflicts, conflictDetail(r))
				seen[r.ID] = true
			}
		}
	}

	return &ConflictResult{Valid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func conflictDetail(r *models.Reservation) models.ConflictDetail {
	return models.ConflictDetail{
		ReservationID: r.ID,
		Start:         FormatMinutes(r.StartMin),
		End:           FormatMinutes(r.EndMin()),
		StartMin:      r.StartMin,
		EndMin:        r.EndMin(),
		Origin:        r.Origin,
	}
}

func sameDay(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
