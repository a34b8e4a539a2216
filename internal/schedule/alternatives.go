package schedule

import (
	"context"
	"sort"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"
)

// SearchConfig bounds the alternative-slot search. Zero values are replaced
// by the package defaults.
type SearchConfig struct {
	GridStepMin      int
	ScanRadiusMin    int
	ReleaseWindowMin int
	SameDayLeadMin   int
	NearWindowMin    int
	ScanFloorMin     int
	ScanCeilMin      int
	MaxResults       int
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		GridStepMin:      models.DefaultGridStepMinutes,
		ScanRadiusMin:    models.DefaultScanRadiusMinutes,
		ReleaseWindowMin: models.DefaultReleaseWindowMinutes,
		SameDayLeadMin:   models.DefaultSameDayLeadMinutes,
		NearWindowMin:    models.DefaultNearWindowMinutes,
		ScanFloorMin:     models.DefaultScanFloorMinutes,
		ScanCeilMin:      models.DefaultScanCeilMinutes,
		MaxResults:       models.DefaultMaxAlternatives,
	}
}

func (c SearchConfig) withDefaults() SearchConfig {
	d := DefaultSearchConfig()
	if c.GridStepMin <= 0 {
		c.GridStepMin = d.GridStepMin
	}
	if c.ScanRadiusMin <= 0 {
		c.ScanRadiusMin = d.ScanRadiusMin
	}
	if c.ReleaseWindowMin <= 0 {
		c.ReleaseWindowMin = d.ReleaseWindowMin
	}
	if c.SameDayLeadMin <= 0 {
		c.SameDayLeadMin = d.SameDayLeadMin
	}
	if c.NearWindowMin <= 0 {
		c.NearWindowMin = d.NearWindowMin
	}
	if c.ScanFloorMin <= 0 {
		c.ScanFloorMin = d.ScanFloorMin
	}
	if c.ScanCeilMin <= 0 {
		c.ScanCeilMin = d.ScanCeilMin
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	return c
}

// AlternativeFinder searches around a rejected request for good substitute
// slots: an exact-time match on any eligible table, the minutes existing
// reservations release their tables, and a coarse grid scan. Results are
// merged, ranked, and truncated. Given an unchanged reservation set the
// output order is deterministic.
type AlternativeFinder struct {
	store     domain.Store
	allocator *TableAllocator
	cfg       SearchConfig
	now       func() time.Time
}

func NewAlternativeFinder(store domain.Store, allocator *TableAllocator, cfg SearchConfig) *AlternativeFinder {
	return &AlternativeFinder{
		store:     store,
		allocator: allocator,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Find returns up to MaxResults ranked alternatives for the requested slot.
func (f *AlternativeFinder) Find(ctx context.Context, date time.Time, requestedMin, partySize, durationMin int) ([]models.AlternativeSlot, error) {
	var slots []models.AlternativeSlot
	covered := make(map[int]bool)

	// Step 1: exact-time recheck across every eligible table, not just the
	// one that originally failed. Any free table makes the requested time a
	// perfect-match suggestion.
	exact, err := f.allocator.FindAvailable(ctx, date, requestedMin, partySize, durationMin)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		slots = append(slots, models.AlternativeSlot{
			Time:           FormatMinutes(requestedMin),
			TimeMin:        requestedMin,
			FreeTableCount: len(exact),
			IsExactMatch:   true,
		})
		covered[requestedMin] = true
	}

	// Step 2: release events, the exact minutes existing reservations end.
	releases, err := f.releaseEvents(ctx, date, requestedMin, partySize)
	if err != nil {
		return nil, err
	}
	for _, slot := range releases {
		if covered[slot.TimeMin] {
			continue
		}
		slots = append(slots, slot)
		covered[slot.TimeMin] = true
	}

	// Step 3: grid scan around the requested time.
	gridSlots, err := f.gridScan(ctx, date, requestedMin, partySize, durationMin, covered)
	if err != nil {
		return nil, err
	}
	slots = append(slots, gridSlots...)

	rankSlots(slots, f.cfg.NearWindowMin)
	if len(slots) > f.cfg.MaxResults {
		slots = slots[:f.cfg.MaxResults]
	}
	return slots, nil
}

func (f *AlternativeFinder) releaseEvents(ctx context.Context, date time.Time, requestedMin, partySize int) ([]models.AlternativeSlot, error) {
	eligible, err := f.store.ListTablesByCapacity(ctx, partySize, partySize+models.CapacityOverfit)
	if err != nil {
		return nil, &TransientStorageError{Op: "list tables by capacity", Err: err}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(eligible))
	for i, t := range eligible {
		ids[i] = t.ID
	}
	reservations, err := f.store.ListActiveReservationsForTables(ctx, ids, date)
	if err != nil {
		return nil, &TransientStorageError{Op: "list reservations for tables", Err: err}
	}

	// Group end minutes, counting distinct tables freed at each.
	freedTables := make(map[int]map[int64]bool)
	for _, r := range reservations {
		end := r.EndMin()
		dist := end - requestedMin
		if dist < -f.cfg.ReleaseWindowMin || dist > f.cfg.ReleaseWindowMin {
			continue
		}
		if freedTables[end] == nil {
			freedTables[end] = make(map[int64]bool)
		}
		freedTables[end][r.TableID] = true
	}

	endTimes := make([]int, 0, len(freedTables))
	for end := range freedTables {
		endTimes = append(endTimes, end)
	}
	sort.Ints(endTimes)

	slots := make([]models.AlternativeSlot, 0, len(endTimes))
	for _, end := range endTimes {
		slots = append(slots, models.AlternativeSlot{
			Time:                 FormatMinutes(end),
			TimeMin:              end,
			FreeTableCount:       len(freedTables[end]),
			MinutesFromRequested: end - requestedMin,
			IsReleaseEvent:       true,
		})
	}
	return slots, nil
}

func (f *AlternativeFinder) gridScan(ctx context.Context, date time.Time, requestedMin, partySize, durationMin int, covered map[int]bool) ([]models.AlternativeSlot, error) {
	minLead := -1
	now := f.now()
	if sameDay(date, now) {
		minLead = now.Hour()*60 + now.Minute() + f.cfg.SameDayLeadMin
	}

	var slots []models.AlternativeSlot
	for m := requestedMin - f.cfg.ScanRadiusMin; m <= requestedMin+f.cfg.ScanRadiusMin; m += f.cfg.GridStepMin {
		if m < f.cfg.ScanFloorMin || m > f.cfg.ScanCeilMin {
			continue
		}
		if covered[m] || m < minLead {
			continue
		}
		free, err := f.allocator.FindAvailable(ctx, date, m, partySize, durationMin)
		if err != nil {
			return nil, err
		}
		if len(free) == 0 {
			continue
		}
		slots = append(slots, models.AlternativeSlot{
			Time:                 FormatMinutes(m),
			TimeMin:              m,
			FreeTableCount:       len(free),
			MinutesFromRequested: m - requestedMin,
		})
	}
	return slots, nil
}

// rankSlots orders: exact match, then release events closest first, then
// slots within the near window, then everything else by absolute distance.
// TimeMin is the final tiebreak so repeated calls rank identically.
func rankSlots(slots []models.AlternativeSlot, nearWindow int) {
	rank := func(s models.AlternativeSlot) int {
		switch {
		case s.IsExactMatch:
			return 0
		case s.IsReleaseEvent:
			return 1
		case abs(s.MinutesFromRequested) <= nearWindow:
			return 2
		default:
			return 3
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		ri, rj := rank(slots[i]), rank(slots[j])
		if ri != rj {
			return ri < rj
		}
		di, dj := abs(slots[i].MinutesFromRequested), abs(slots[j].MinutesFromRequested)
		if di != dj {
			return di < dj
		}
		return slots[i].TimeMin < slots[j].TimeMin
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
