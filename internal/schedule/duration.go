package schedule

import (
	"context"

	"tablebook/internal/domain"
	"tablebook/internal/models"

	"github.com/rs/zerolog"
)

// DurationPolicy resolves the reservation duration to apply. An explicit
// positive value from the request wins; otherwise the venue default is read
// from the store on every call. The default is operator-editable and must
// take effect immediately, so it is never memoized.
type DurationPolicy struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewDurationPolicy(store domain.Store, logger *zerolog.Logger) *DurationPolicy {
	return &DurationPolicy{store: store, logger: logger}
}

// Resolve returns the duration in minutes. When the live read fails it falls
// back to a conservative default rather than blocking the request, and logs
// the degradation.
func (p *DurationPolicy) Resolve(ctx context.Context, explicitMinutes int) int {
	if explicitMinutes > 0 {
		return explicitMinutes
	}

	minutes, err := p.store.GetDefaultDuration(ctx)
	if err != nil || minutes <= 0 {
		p.logger.Warn().Err(err).
			Int("fallback_minutes", models.DefaultDurationFallback).
			Msg("default duration read failed, using fallback")
		return models.DefaultDurationFallback
	}
	return minutes
}
