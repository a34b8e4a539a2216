package schedule

import (
	"context"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"
)

// TableAllocator filters tables by capacity fit and keeps those free of
// conflicts. Candidates come back from the store ordered capacity ascending
// then table number ascending, so the smallest adequate table wins ties; the
// caller typically takes the first result as the allocation. Candidate
// iteration is sequential: the order is part of the contract.
type TableAllocator struct {
	store   domain.Store
	checker *ConflictChecker
}

func NewTableAllocator(store domain.Store, checker *ConflictChecker) *TableAllocator {
	return &TableAllocator{store: store, checker: checker}
}

// FindAvailable returns the usable tables for the interval in priority order.
func (a *TableAllocator) FindAvailable(ctx context.Context, date time.Time, startMin, partySize, durationMin int) ([]*models.Table, error) {
	available, _, err := a.Probe(ctx, date, startMin, partySize, durationMin, 0)
	return available, err
}

// Probe is FindAvailable plus the conflicts encountered along the way,
// deduplicated by reservation id, so a rejection can explain itself.
// excludeID skips one reservation in every conflict check (the modify flow
// must not collide with its own prior state).
func (a *TableAllocator) Probe(ctx context.Context, date time.Time, startMin, partySize, durationMin int, excludeID int64) ([]*models.Table, []models.ConflictDetail, error) {
	candidates, err := a.store.ListTablesByCapacity(ctx, partySize, partySize+models.CapacityOverfit)
	if err != nil {
		return nil, nil, &TransientStorageError{Op: "list tables by capacity", Err: err}
	}

	var available []*models.Table
	var conflicts []models.ConflictDetail
	seen := make(map[int64]bool)
	for _, table := range candidates {
		result, err := a.checker.Check(ctx, table.ID, date, startMin, durationMin, excludeID)
		if err != nil {
			// Fail closed: an unverifiable table is never offered.
			return nil, nil, err
		}
		if result.Valid {
			available = append(available, table)
			continue
		}
		for _, c := range result.Conflicts {
			if !seen[c.ReservationID] {
				conflicts = append(conflicts, c)
				seen[c.ReservationID] = true
			}
		}
	}

	return available, conflicts, nil
}
