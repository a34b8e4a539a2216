package database

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func mustCreateTable(t *testing.T, db *DB, number, capacity int) *models.Table {
	t.Helper()
	table := &models.Table{Number: number, Capacity: capacity, IsActive: true}
	require.NoError(t, db.CreateTable(context.Background(), table))
	return table
}

func newReservation(tableID int64, startMin, durationMin int) *models.Reservation {
	return &models.Reservation{
		TableID:     tableID,
		GuestName:   "Guest",
		Phone:       "+39000000000",
		PartySize:   2,
		Date:        testDate,
		StartMin:    startMin,
		DurationMin: durationMin,
		Status:      models.StatusPending,
		Origin:      models.OriginWeb,
	}
}

func TestCreateReservationChecked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	first := newReservation(table.ID, 780, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, int64(1), first.Version)

	// overlapping insert is rejected inside the transaction
	overlap := newReservation(table.ID, 840, 120)
	assert.ErrorIs(t, db.CreateReservationChecked(ctx, overlap), ErrSlotTaken)

	// back-to-back shares only the boundary minute owner, not the slot
	adjacent := newReservation(table.ID, 900, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, adjacent))

	// a different table is free at the same time
	other := mustCreateTable(t, db, 2, 4)
	require.NoError(t, db.CreateReservationChecked(ctx, newReservation(other.ID, 780, 120)))

	got, err := db.GetReservation(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, testDate.Format("2006-01-02"), got.Date.Format("2006-01-02"))
	assert.Equal(t, 780, got.StartMin)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestCreateCheckedMidnightCrossing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	// 20:00-04:00 window on the reservation's weekday
	require.NoError(t, db.SetWeeklyHours(ctx, &models.BusinessHours{
		Weekday: int(testDate.Weekday()), OpenMin: 1200, CloseMin: 240,
	}))

	// 23:00-01:00 holds the table past midnight
	overnight := newReservation(table.ID, 1380, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, overnight))

	// 00:30 on the same business date lands inside the overnight interval
	tail := newReservation(table.ID, 30, 120)
	assert.ErrorIs(t, db.CreateReservationChecked(ctx, tail), ErrSlotTaken)

	// 01:00 starts exactly at release, back to back across midnight
	release := newReservation(table.ID, 60, 60)
	require.NoError(t, db.CreateReservationChecked(ctx, release))

	// the stored 01:00 row also blocks a new pre-midnight interval reaching it
	head := newReservation(table.ID, 1410, 120) // 23:30-01:30
	assert.ErrorIs(t, db.CreateReservationChecked(ctx, head), ErrSlotTaken)
}

func TestRescheduleCheckedMidnightCrossing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	require.NoError(t, db.SetWeeklyHours(ctx, &models.BusinessHours{
		Weekday: int(testDate.Weekday()), OpenMin: 1200, CloseMin: 240,
	}))

	overnight := newReservation(table.ID, 1380, 120) // 23:00-01:00
	require.NoError(t, db.CreateReservationChecked(ctx, overnight))

	moved := newReservation(table.ID, 1200, 60) // 20:00-21:00
	require.NoError(t, db.CreateReservationChecked(ctx, moved))

	// moving into the post-midnight tail collides with the overnight row
	moved.StartMin = 30
	assert.ErrorIs(t, db.RescheduleReservationChecked(ctx, moved, 1), ErrSlotTaken)

	moved.StartMin = 60 // 01:00, right at release
	require.NoError(t, db.RescheduleReservationChecked(ctx, moved, 1))
	assert.Equal(t, int64(2), moved.Version)
}

func TestCreateIgnoresInactiveReservations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	cancelled := newReservation(table.ID, 780, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, cancelled))
	require.NoError(t, db.UpdateReservationStatusWithVersion(ctx, cancelled.ID, 1, models.StatusCancelled))

	// cancelled slot is available again
	require.NoError(t, db.CreateReservationChecked(ctx, newReservation(table.ID, 780, 120)))
}

func TestListActiveReservations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	late := newReservation(table.ID, 1200, 90)
	early := newReservation(table.ID, 780, 90)
	cancelled := newReservation(table.ID, 900, 90)
	require.NoError(t, db.CreateReservationChecked(ctx, late))
	require.NoError(t, db.CreateReservationChecked(ctx, early))
	require.NoError(t, db.CreateReservationChecked(ctx, cancelled))
	require.NoError(t, db.UpdateReservationStatusWithVersion(ctx, cancelled.ID, 1, models.StatusCancelled))

	list, err := db.ListActiveReservations(ctx, table.ID, testDate, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 780, list[0].StartMin)
	assert.Equal(t, 1200, list[1].StartMin)

	list, err = db.ListActiveReservations(ctx, table.ID, testDate, early.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, late.ID, list[0].ID)

	list, err = db.ListActiveReservations(ctx, table.ID, testDate.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListActiveReservationsForTables(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	t1 := mustCreateTable(t, db, 1, 4)
	t2 := mustCreateTable(t, db, 2, 4)
	t3 := mustCreateTable(t, db, 3, 4)

	require.NoError(t, db.CreateReservationChecked(ctx, newReservation(t1.ID, 780, 90)))
	require.NoError(t, db.CreateReservationChecked(ctx, newReservation(t2.ID, 780, 90)))
	require.NoError(t, db.CreateReservationChecked(ctx, newReservation(t3.ID, 780, 90)))

	list, err := db.ListActiveReservationsForTables(ctx, []int64{t1.ID, t3.ID}, testDate)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = db.ListActiveReservationsForTables(ctx, nil, testDate)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListReservationsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	for day := 0; day < 3; day++ {
		r := newReservation(table.ID, 780, 90)
		r.Date = testDate.AddDate(0, 0, day)
		require.NoError(t, db.CreateReservationChecked(ctx, r))
	}

	list, err := db.ListReservationsByDateRange(ctx, testDate, testDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Date.Before(list[1].Date))
}

func TestRescheduleReservationChecked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	r := newReservation(table.ID, 780, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, r))

	// shifting within the old interval must not collide with the own row
	r.StartMin = 840
	require.NoError(t, db.RescheduleReservationChecked(ctx, r, 1))
	assert.Equal(t, int64(2), r.Version)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 840, got.StartMin)
	assert.Equal(t, int64(2), got.Version)

	// stale version loses
	r.StartMin = 900
	assert.ErrorIs(t, db.RescheduleReservationChecked(ctx, r, 1), ErrConcurrentModification)

	// moving onto another active reservation is rejected
	blocker := newReservation(table.ID, 1200, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, blocker))
	r.StartMin = 1230
	assert.ErrorIs(t, db.RescheduleReservationChecked(ctx, r, 2), ErrSlotTaken)
}

func TestUpdateReservationStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	table := mustCreateTable(t, db, 1, 4)

	r := newReservation(table.ID, 780, 120)
	require.NoError(t, db.CreateReservationChecked(ctx, r))

	require.NoError(t, db.UpdateReservationStatusWithVersion(ctx, r.ID, 1, models.StatusConfirmed))

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)

	err = db.UpdateReservationStatusWithVersion(ctx, r.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}
