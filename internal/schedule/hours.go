package schedule

import (
	"context"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"
)

// HoursResolver resolves the effective opening window for a calendar date.
// A date-specific exception fully determines the result; otherwise the weekly
// schedule entry for the weekday applies, defaulting to closed when absent.
// Nothing is cached: operators edit hours at runtime and the next request
// must see the change.
type HoursResolver struct {
	store domain.Store
}

func NewHoursResolver(store domain.Store) *HoursResolver {
	return &HoursResolver{store: store}
}

func (h *HoursResolver) Resolve(ctx context.Context, date time.Time) (*models.TimeWindow, error) {
	exc, err := h.store.GetHoursException(ctx, date)
	if err != nil {
		return nil, &TransientStorageError{Op: "get hours exception", Err: err}
	}
	if exc != nil {
		return &models.TimeWindow{
			Closed:      exc.Closed,
			OpenMin:     exc.OpenMin,
			CloseMin:    exc.CloseMin,
			IsException: true,
		}, nil
	}

	weekly, err := h.store.GetWeeklyHours(ctx, int(date.Weekday()))
	if err != nil {
		return nil, &TransientStorageError{Op: "get weekly hours", Err: err}
	}
	if weekly == nil || weekly.Closed {
		return &models.TimeWindow{Closed: true}, nil
	}

	return &models.TimeWindow{OpenMin: weekly.OpenMin, CloseMin: weekly.CloseMin}, nil
}
