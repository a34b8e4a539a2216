package export

import (
	"context"
	"io"
	"testing"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// stubStore implements only the read paths the exporter touches.
type stubStore struct {
	domain.Store
	tables       []*models.Table
	reservations []*models.Reservation
}

func (s *stubStore) ListTables(ctx context.Context) ([]*models.Table, error) {
	return s.tables, nil
}

func (s *stubStore) ListReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	return s.reservations, nil
}

func TestExportSchedule(t *testing.T) {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	store := &stubStore{
		tables: []*models.Table{
			{ID: 1, Number: 1, Capacity: 2, Zone: "window"},
			{ID: 2, Number: 2, Capacity: 4},
		},
		reservations: []*models.Reservation{
			{
				ID: 10, TableID: 1, GuestName: "Anna", PartySize: 2, Date: start,
				StartMin: 780, DurationMin: 90, Status: models.StatusConfirmed,
			},
			{
				ID: 11, TableID: 1, GuestName: "Marco", PartySize: 2, Date: start,
				StartMin: 1170, DurationMin: 90, Status: models.StatusPending,
				Comment: "birthday",
			},
			{
				ID: 12, TableID: 2, GuestName: "Luca", PartySize: 4, Date: start,
				StartMin: 900, DurationMin: 120, Status: models.StatusCancelled,
			},
		},
	}

	logger := zerolog.New(io.Discard)
	svc := NewExportService(store, t.TempDir(), &logger)

	path, err := svc.ExportSchedule(context.Background(), start, end)
	require.NoError(t, err)
	assert.Contains(t, path, "schedule_2026-09-07_to_2026-09-09.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "07.09.2026")
	assert.Contains(t, title, "09.09.2026")

	header, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "07.09 Mon", header)

	label, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Table 1 (seats 2), window", label)

	// table 1 on the first day carries both active bookings
	cell, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Contains(t, cell, "13:00-14:30 Anna (2)")
	assert.Contains(t, cell, "19:30-21:00 Marco (2)")
	assert.Contains(t, cell, "birthday")

	// the cancelled booking renders table 2 as free
	cell, err = f.GetCellValue(sheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Free", cell)

	// days without bookings are free everywhere
	cell, err = f.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Free", cell)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", columnName(1))
	assert.Equal(t, "Z", columnName(26))
	assert.Equal(t, "AA", columnName(27))
	assert.Equal(t, "AB", columnName(28))
}
