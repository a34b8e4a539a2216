package service

import (
	"context"
	"errors"
	"time"

	"tablebook/internal/database"
	"tablebook/internal/domain"
	"tablebook/internal/events"
	"tablebook/internal/metrics"
	"tablebook/internal/models"
	"tablebook/internal/schedule"

	"github.com/rs/zerolog"
)

// BookRequest carries one booking attempt from any entry surface (web
// widget, chat agent, phone operator).
type BookRequest struct {
	GuestName   string
	Phone       string
	PartySize   int
	Date        time.Time
	StartMin    int
	DurationMin int // 0 means the venue default applies
	Origin      string
	Comment     string
}

type BookingService struct {
	store        domain.Store
	engine       *schedule.Engine
	eventBus     domain.EventPublisher
	maxDaysAhead int
	now          func() time.Time
	logger       *zerolog.Logger
}

func NewBookingService(store domain.Store, engine *schedule.Engine, eventBus domain.EventPublisher, maxDaysAhead int, logger *zerolog.Logger) *BookingService {
	if maxDaysAhead <= 0 {
		maxDaysAhead = 90
	}
	return &BookingService{
		store:        store,
		engine:       engine,
		eventBus:     eventBus,
		maxDaysAhead: maxDaysAhead,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	today := s.now().Truncate(24 * time.Hour)
	if date.Before(today.AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	maxDate := s.now().AddDate(0, 0, s.maxDaysAhead)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

// Book runs the full validation pipeline and persists the reservation. When
// the transactional insert loses a race the whole allocation is retried once:
// the winner may have taken a different table than the one we picked.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*models.Reservation, error) {
	if err := s.ValidateBookingDate(req.Date); err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}

	reservation, err := s.bookOnce(ctx, req)
	if errors.Is(err, database.ErrSlotTaken) {
		s.logger.Info().Str("guest", req.GuestName).Msg("lost insert race, retrying allocation")
		metrics.IncBooking("lost_race")
		reservation, err = s.bookOnce(ctx, req)
	}
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	metrics.IncBooking("allocated")
	s.publishEvent(events.EventReservationCreated, reservation, req.Origin)
	return reservation, nil
}

func (s *BookingService) bookOnce(ctx context.Context, req BookRequest) (*models.Reservation, error) {
	result, err := s.engine.Allocate(ctx, schedule.Request{
		Date:        req.Date,
		StartMin:    req.StartMin,
		PartySize:   req.PartySize,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		TableID:     result.Allocated.ID,
		TableNumber: result.Allocated.Number,
		GuestName:   req.GuestName,
		Phone:       req.Phone,
		PartySize:   req.PartySize,
		Date:        req.Date,
		StartMin:    req.StartMin,
		DurationMin: result.DurationMin,
		Status:      models.StatusPending,
		Origin:      req.Origin,
		Comment:     req.Comment,
	}

	if err := s.store.CreateReservationChecked(ctx, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// Reschedule moves an existing reservation to a new date, time or party
// size. The reservation's own interval is excluded from conflict checks so
// shrinking or nudging a booking inside its current slot always passes.
func (s *BookingService) Reschedule(ctx context.Context, id, version int64, req BookRequest) (*models.Reservation, error) {
	if err := s.ValidateBookingDate(req.Date); err != nil {
		return nil, err
	}

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsActive() {
		return nil, &schedule.ValidationError{Field: "status", Message: "only pending or confirmed reservations can be rescheduled"}
	}

	result, err := s.engine.Allocate(ctx, schedule.Request{
		Date:                 req.Date,
		StartMin:             req.StartMin,
		PartySize:            req.PartySize,
		DurationMin:          req.DurationMin,
		ExcludeReservationID: id,
	})
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	updated := *current
	updated.TableID = result.Allocated.ID
	updated.TableNumber = result.Allocated.Number
	updated.Date = req.Date
	updated.StartMin = req.StartMin
	updated.DurationMin = result.DurationMin
	updated.PartySize = req.PartySize

	if err := s.store.RescheduleReservationChecked(ctx, &updated, version); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReservationRescheduled, &updated, req.Origin)
	return &updated, nil
}

func (s *BookingService) Confirm(ctx context.Context, id, version int64) error {
	return s.setStatus(ctx, id, version, models.StatusConfirmed, events.EventReservationConfirmed)
}

func (s *BookingService) Cancel(ctx context.Context, id, version int64) error {
	return s.setStatus(ctx, id, version, models.StatusCancelled, events.EventReservationCancelled)
}

func (s *BookingService) Complete(ctx context.Context, id, version int64) error {
	return s.setStatus(ctx, id, version, models.StatusCompleted, events.EventReservationCompleted)
}

func (s *BookingService) MarkNoShow(ctx context.Context, id, version int64) error {
	return s.setStatus(ctx, id, version, models.StatusNoShow, events.EventReservationNoShow)
}

func (s *BookingService) setStatus(ctx context.Context, id, version int64, status, eventType string) error {
	if err := s.store.UpdateReservationStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	reservation, err := s.store.GetReservation(ctx, id)
	if err == nil {
		s.publishEvent(eventType, reservation, "manager")
	}

	return nil
}

// CheckSlot answers "would this request be accepted" without touching table
// inventory. Used by the availability endpoint and the chat-agent flow.
func (s *BookingService) CheckSlot(ctx context.Context, date time.Time, startMin, partySize, durationMin int) (*models.ValidationResult, error) {
	if err := s.ValidateBookingDate(date); err != nil {
		return nil, err
	}
	return s.engine.Validate(ctx, schedule.Request{
		Date:        date,
		StartMin:    startMin,
		PartySize:   partySize,
		DurationMin: durationMin,
	})
}

// CheckTable probes one specific table for an interval. The duration runs
// through the same policy as a booking, so an omitted value means the venue
// default and never a zero-length interval. On conflict the result carries
// the blocking reservations plus ranked alternatives, which re-test the
// requested time against the whole fleet: another table may be free at
// exactly the requested minute.
func (s *BookingService) CheckTable(ctx context.Context, tableID int64, date time.Time, startMin, partySize, durationMin int) (*models.AllocationResult, error) {
	table, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}

	durationMin = s.engine.ResolveDuration(ctx, durationMin)

	check, err := s.engine.Checker().Check(ctx, tableID, date, startMin, durationMin, 0)
	if err != nil {
		return nil, err
	}
	if check.Valid {
		return &models.AllocationResult{Allocated: table, DurationMin: durationMin}, nil
	}

	alternatives, err := s.engine.Finder().Find(ctx, date, startMin, partySize, durationMin)
	if err != nil {
		s.logger.Warn().Err(err).Int64("table_id", tableID).Msg("alternative search failed")
		alternatives = nil
	}

	metrics.AddConflicts(len(check.Conflicts))
	metrics.AddAlternatives(len(alternatives))

	return &models.AllocationResult{
		DurationMin:  durationMin,
		Conflicts:    check.Conflicts,
		Alternatives: alternatives,
	}, nil
}

// Alternatives runs the ranked slot search directly, resolving an omitted
// duration to the venue default first.
func (s *BookingService) Alternatives(ctx context.Context, date time.Time, startMin, partySize, durationMin int) ([]models.AlternativeSlot, error) {
	durationMin = s.engine.ResolveDuration(ctx, durationMin)
	slots, err := s.engine.Finder().Find(ctx, date, startMin, partySize, durationMin)
	if err != nil {
		return nil, err
	}
	metrics.AddAlternatives(len(slots))
	return slots, nil
}

// DayOverview assembles a date's reservations per table with the effective
// window for the dashboard.
func (s *BookingService) DayOverview(ctx context.Context, date time.Time) (*models.DayOverview, error) {
	window, err := s.engine.Hours().Resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	reservations, err := s.store.ListReservationsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	byTable := make(map[int64][]models.Reservation)
	for _, r := range reservations {
		byTable[r.TableID] = append(byTable[r.TableID], *r)
	}

	return &models.DayOverview{
		Date:         date,
		Window:       window,
		Reservations: byTable,
	}, nil
}

func (s *BookingService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *BookingService) GetReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	return s.store.ListReservationsByDateRange(ctx, start, end)
}

func (s *BookingService) countRejection(err error) {
	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		metrics.IncBooking("conflict")
		metrics.AddConflicts(len(conflictErr.Conflicts))
		metrics.AddAlternatives(len(conflictErr.Alternatives))
		return
	}
	var transient *schedule.TransientStorageError
	if errors.As(err, &transient) {
		metrics.IncBooking("error")
		return
	}
	metrics.IncBooking("rejected")
}

func (s *BookingService) publishEvent(eventType string, r *models.Reservation, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		TableID:       r.TableID,
		GuestName:     r.GuestName,
		PartySize:     r.PartySize,
		Date:          r.Date,
		Start:         schedule.FormatMinutes(r.StartMin),
		DurationMin:   r.DurationMin,
		Status:        r.Status,
		Origin:        r.Origin,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}
