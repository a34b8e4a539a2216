package schedule

import (
	"context"
	"errors"
	"sort"
	"time"

	"tablebook/internal/models"
)

// fakeStore is an in-memory Store for exercising the scheduling core
// without SQLite. Error injection flags simulate storage failures.
type fakeStore struct {
	tables       []*models.Table
	reservations []*models.Reservation
	weekly       map[int]*models.BusinessHours
	exceptions   map[string]*models.HoursException
	defaultDur   int

	failTables       bool
	failReservations bool
	failHours        bool
	failDuration     bool
}

var errStorage = errors.New("storage unavailable")

func newFakeStore() *fakeStore {
	return &fakeStore{
		weekly:     make(map[int]*models.BusinessHours),
		exceptions: make(map[string]*models.HoursException),
	}
}

func dateKey(date time.Time) string { return date.Format("2006-01-02") }

func (s *fakeStore) ListTablesByCapacity(ctx context.Context, minCapacity, maxCapacity int) ([]*models.Table, error) {
	if s.failTables {
		return nil, errStorage
	}
	var out []*models.Table
	for _, t := range s.tables {
		if t.IsActive && t.Capacity >= minCapacity && t.Capacity <= maxCapacity {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (s *fakeStore) ListTables(ctx context.Context) ([]*models.Table, error) {
	if s.failTables {
		return nil, errStorage
	}
	return s.tables, nil
}

func (s *fakeStore) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	for _, t := range s.tables {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errStorage
}

func (s *fakeStore) CreateTable(ctx context.Context, table *models.Table) error {
	table.ID = int64(len(s.tables) + 1)
	s.tables = append(s.tables, table)
	return nil
}

func (s *fakeStore) UpdateTable(ctx context.Context, table *models.Table) error { return nil }
func (s *fakeStore) DeactivateTable(ctx context.Context, id int64) error        { return nil }

func (s *fakeStore) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	for _, r := range s.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errStorage
}

func (s *fakeStore) ListActiveReservations(ctx context.Context, tableID int64, date time.Time, excludeID int64) ([]*models.Reservation, error) {
	if s.failReservations {
		return nil, errStorage
	}
	var out []*models.Reservation
	for _, r := range s.reservations {
		if r.TableID != tableID || dateKey(r.Date) != dateKey(date) {
			continue
		}
		if !r.IsActive() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out, nil
}

func (s *fakeStore) ListActiveReservationsForTables(ctx context.Context, tableIDs []int64, date time.Time) ([]*models.Reservation, error) {
	if s.failReservations {
		return nil, errStorage
	}
	ids := make(map[int64]bool, len(tableIDs))
	for _, id := range tableIDs {
		ids[id] = true
	}
	var out []*models.Reservation
	for _, r := range s.reservations {
		if ids[r.TableID] && dateKey(r.Date) == dateKey(date) && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListReservationsByDate(ctx context.Context, date time.Time) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, r := range s.reservations {
		if dateKey(r.Date) == dateKey(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, r := range s.reservations {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateReservationChecked(ctx context.Context, r *models.Reservation) error {
	r.ID = int64(len(s.reservations) + 1)
	r.Version = 1
	s.reservations = append(s.reservations, r)
	return nil
}

func (s *fakeStore) RescheduleReservationChecked(ctx context.Context, r *models.Reservation, fromVersion int64) error {
	for i, existing := range s.reservations {
		if existing.ID == r.ID {
			s.reservations[i] = r
			return nil
		}
	}
	return errStorage
}

func (s *fakeStore) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	for _, r := range s.reservations {
		if r.ID == id {
			r.Status = status
			r.Version++
			return nil
		}
	}
	return errStorage
}

func (s *fakeStore) GetWeeklyHours(ctx context.Context, weekday int) (*models.BusinessHours, error) {
	if s.failHours {
		return nil, errStorage
	}
	return s.weekly[weekday], nil
}

func (s *fakeStore) SetWeeklyHours(ctx context.Context, hours *models.BusinessHours) error {
	s.weekly[hours.Weekday] = hours
	return nil
}

func (s *fakeStore) GetHoursException(ctx context.Context, date time.Time) (*models.HoursException, error) {
	if s.failHours {
		return nil, errStorage
	}
	return s.exceptions[dateKey(date)], nil
}

func (s *fakeStore) SetHoursException(ctx context.Context, exc *models.HoursException) error {
	s.exceptions[dateKey(exc.Date)] = exc
	return nil
}

func (s *fakeStore) DeleteHoursException(ctx context.Context, date time.Time) error {
	delete(s.exceptions, dateKey(date))
	return nil
}

func (s *fakeStore) GetDefaultDuration(ctx context.Context) (int, error) {
	if s.failDuration {
		return 0, errStorage
	}
	return s.defaultDur, nil
}

func (s *fakeStore) SetDefaultDuration(ctx context.Context, minutes int) error {
	s.defaultDur = minutes
	return nil
}

// openWeek sets Monday through Saturday 13:00-23:00 and keeps Sunday closed.
func (s *fakeStore) openWeek() {
	for weekday := 1; weekday <= 6; weekday++ {
		s.weekly[weekday] = &models.BusinessHours{Weekday: weekday, OpenMin: 13 * 60, CloseMin: 23 * 60}
	}
	s.weekly[0] = &models.BusinessHours{Weekday: 0, Closed: true}
}

func (s *fakeStore) addTable(id int64, number, capacity int) *models.Table {
	t := &models.Table{ID: id, Number: number, Capacity: capacity, IsActive: true}
	s.tables = append(s.tables, t)
	return t
}

func (s *fakeStore) addReservation(id, tableID int64, date time.Time, startMin, durationMin int, status string) *models.Reservation {
	r := &models.Reservation{
		ID:          id,
		TableID:     tableID,
		Date:        date,
		StartMin:    startMin,
		DurationMin: durationMin,
		Status:      status,
		Version:     1,
	}
	s.reservations = append(s.reservations, r)
	return r
}
