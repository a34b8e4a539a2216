package schedule

import (
	"context"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"

	"github.com/rs/zerolog"
)

// Config bounds the engine's searches.
type Config struct {
	// NextOpenSearchDays caps the forward search for the next open date
	// when the requested date is closed.
	NextOpenSearchDays int
	Search             SearchConfig
}

// Request is one booking attempt entering the validation pipeline.
type Request struct {
	Date        time.Time
	StartMin    int
	PartySize   int
	DurationMin int // 0 means the venue default applies
	// ExcludeReservationID skips one reservation in conflict checks; the
	// modify flow sets it to the reservation being moved.
	ExcludeReservationID int64
}

// Engine runs the booking validation pipeline: hours resolution, duration
// resolution, entry-window check, then table search. Rejections come back as
// the typed errors of this package; storage failures never allow a booking.
type Engine struct {
	hours     *HoursResolver
	duration  *DurationPolicy
	checker   *ConflictChecker
	allocator *TableAllocator
	finder    *AlternativeFinder
	cfg       Config
	logger    *zerolog.Logger
}

func NewEngine(store domain.Store, cfg Config, logger *zerolog.Logger) *Engine {
	if cfg.NextOpenSearchDays <= 0 {
		cfg.NextOpenSearchDays = models.DefaultNextOpenSearchDays
	}
	checker := NewConflictChecker(store)
	allocator := NewTableAllocator(store, checker)
	return &Engine{
		hours:     NewHoursResolver(store),
		duration:  NewDurationPolicy(store, logger),
		checker:   checker,
		allocator: allocator,
		finder:    NewAlternativeFinder(store, allocator, cfg.Search),
		cfg:       cfg,
		logger:    logger,
	}
}

// Checker exposes the conflict checker for single-table probes.
func (e *Engine) Checker() *ConflictChecker { return e.checker }

// Finder exposes the alternative-slot search.
func (e *Engine) Finder() *AlternativeFinder { return e.finder }

// Hours exposes the hours resolver for read-only window lookups.
func (e *Engine) Hours() *HoursResolver { return e.hours }

// ResolveDuration applies the duration policy outside the full pipeline, for
// probes that take the duration as a raw query parameter. Zero resolves to
// the venue default so the overlap math never sees an empty interval.
func (e *Engine) ResolveDuration(ctx context.Context, requestedMin int) int {
	return e.duration.Resolve(ctx, requestedMin)
}

func (r Request) check() error {
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if r.StartMin < 0 || r.StartMin >= models.MinutesPerDay {
		return &ValidationError{Field: "time", Message: "start must be between 00:00 and 23:59"}
	}
	if r.PartySize <= 0 {
		return &ValidationError{Field: "party_size", Message: "party size must be positive"}
	}
	if r.DurationMin < 0 {
		return &ValidationError{Field: "duration", Message: "duration must be positive"}
	}
	return nil
}

// Validate runs the pipeline up to the entry-window check, without touching
// table inventory. On success the result carries the last valid entry time.
func (e *Engine) Validate(ctx context.Context, req Request) (*models.ValidationResult, error) {
	_, last, err := e.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.ValidationResult{Valid: true, LastEntry: last.LastEntry}, nil
}

// validate is the shared pipeline front: hours, duration, window, boundary.
// It returns the resolved duration for the table search.
func (e *Engine) validate(ctx context.Context, req Request) (durationMin int, last LastEntryResult, err error) {
	if err := req.check(); err != nil {
		return 0, LastEntryResult{}, err
	}

	window, err := e.hours.Resolve(ctx, req.Date)
	if err != nil {
		return 0, LastEntryResult{}, err
	}
	if window.Closed {
		next, opensAt, ferr := e.nextOpenDay(ctx, req.Date)
		if ferr != nil {
			return 0, LastEntryResult{}, ferr
		}
		return 0, LastEntryResult{}, &ClosedError{Date: req.Date, NextOpenDate: next, OpensAt: opensAt}
	}

	durationMin = e.duration.Resolve(ctx, req.DurationMin)

	last = CalculateLastEntry(window.OpenMin, window.CloseMin, durationMin)
	if !last.Valid {
		return 0, last, &InsufficientWindowError{
			AvailableMinutes: last.AvailableMinutes,
			RequiredMinutes:  durationMin,
		}
	}

	// In a midnight-crossing window a start below open belongs to the
	// post-midnight tail; lift it into the continuous frame before the
	// boundary comparisons.
	effectiveStart := liftPastMidnight(req.StartMin, window)
	if effectiveStart < window.OpenMin {
		return 0, last, &BoundaryError{
			Requested:  FormatMinutes(req.StartMin),
			Suggestion: FormatMinutes(window.OpenMin),
			Reason:     "before_open",
		}
	}
	if effectiveStart > last.LastEntryMin {
		return 0, last, &BoundaryError{
			Requested:  FormatMinutes(req.StartMin),
			Suggestion: last.LastEntry,
			Reason:     "after_last_entry",
		}
	}

	return durationMin, last, nil
}

// Allocate runs the full pipeline and searches for a table. An empty search
// yields a ConflictError carrying the blocking reservations and ranked
// alternatives.
func (e *Engine) Allocate(ctx context.Context, req Request) (*models.AllocationResult, error) {
	durationMin, _, err := e.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	available, conflicts, err := e.allocator.Probe(ctx, req.Date, req.StartMin, req.PartySize, durationMin, req.ExcludeReservationID)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		alternatives, aerr := e.finder.Find(ctx, req.Date, req.StartMin, req.PartySize, durationMin)
		if aerr != nil {
			// Suggestions are best effort; the rejection itself stands.
			e.logger.Warn().Err(aerr).Msg("alternative search failed")
			alternatives = nil
		}
		return nil, &ConflictError{Conflicts: conflicts, Alternatives: alternatives}
	}

	return &models.AllocationResult{
		Allocated:   available[0],
		DurationMin: durationMin,
	}, nil
}

// nextOpenDay searches forward, bounded, for the next date the venue opens.
func (e *Engine) nextOpenDay(ctx context.Context, from time.Time) (time.Time, string, error) {
	for i := 1; i <= e.cfg.NextOpenSearchDays; i++ {
		date := from.AddDate(0, 0, i)
		window, err := e.hours.Resolve(ctx, date)
		if err != nil {
			return time.Time{}, "", err
		}
		if !window.Closed {
			return date, FormatMinutes(window.OpenMin), nil
		}
	}
	return time.Time{}, "", nil
}
