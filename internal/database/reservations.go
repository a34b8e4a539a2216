package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tablebook/internal/models"
)

const reservationColumns = `id, table_id, guest_name, phone, party_size, date, start_min,
                 duration_min, status, origin, comment, created_at, updated_at, version`

// liftedStart maps a stored start into the business day's continuous frame.
// In a midnight-crossing window rows starting before open belong to the
// post-midnight tail. Bound as (crossing, open_min).
const liftedStart = `CASE WHEN ? AND start_min < ? THEN start_min + 1440 ELSE start_min END`

// overlapCondition matches active reservations whose half-open interval
// shares a minute with the candidate's, compared in the lifted frame.
// Bind its placeholders with overlapArgs.
const overlapCondition = `status IN ('pending', 'confirmed') AND ` +
	liftedStart + ` < ? AND ? < ` + liftedStart + ` + duration_min`

// overlapArgs binds overlapCondition, lifting the candidate into the same
// frame as the stored rows.
func overlapArgs(openMin int, crossing bool, startMin, durationMin int) []any {
	if crossing && startMin < openMin {
		startMin += models.MinutesPerDay
	}
	endMin := startMin + durationMin
	return []any{crossing, openMin, endMin, startMin, crossing, openMin}
}

// windowFrame reads the effective opening window for a date inside the
// transaction, so the overlap re-check lifts post-midnight starts against
// the same hours a competing writer commits under. A closed or missing
// window means no lifting applies.
func windowFrame(ctx context.Context, tx *sql.Tx, date time.Time) (openMin int, crossing bool, err error) {
	var closed bool
	var open, closeMin int
	err = tx.QueryRowContext(ctx,
		`SELECT is_closed, open_min, close_min FROM hours_exceptions WHERE date = ?`,
		date.Format("2006-01-02")).Scan(&closed, &open, &closeMin)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx,
			`SELECT is_closed, open_min, close_min FROM business_hours WHERE weekday = ?`,
			int(date.Weekday())).Scan(&closed, &open, &closeMin)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read opening window: %w", err)
	}
	if closed {
		return 0, false, nil
	}
	return open, closeMin <= open, nil
}

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	r := &models.Reservation{}
	var dateStr string
	err := row.Scan(
		&r.ID, &r.TableID, &r.GuestName, &r.Phone, &r.PartySize, &dateStr,
		&r.StartMin, &r.DurationMin, &r.Status, &r.Origin, &r.Comment,
		&r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	r.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reservation date %s: %w", dateStr, err)
	}
	return r, nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ListActiveReservations returns pending/confirmed reservations for a table
// and date, ordered by start. excludeID skips one reservation when non-zero.
func (db *DB) ListActiveReservations(ctx context.Context, tableID int64, date time.Time, excludeID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE table_id = ? AND date = ? AND status IN ('pending', 'confirmed') AND id != ?
              ORDER BY start_min ASC`
	rows, err := db.QueryContext(ctx, query, tableID, date.Format("2006-01-02"), excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (db *DB) ListActiveReservationsForTables(ctx context.Context, tableIDs []int64, date time.Time) ([]*models.Reservation, error) {
	if len(tableIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(tableIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE table_id IN (` + placeholders + `) AND date = ? AND status IN ('pending', 'confirmed')
              ORDER BY start_min ASC, table_id ASC`

	args := make([]any, 0, len(tableIDs)+1)
	for _, id := range tableIDs {
		args = append(args, id)
	}
	args = append(args, date.Format("2006-01-02"))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for tables: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (db *DB) ListReservationsByDate(ctx context.Context, date time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date = ? ORDER BY table_id ASC, start_min ASC`
	rows, err := db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by date: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (db *DB) ListReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date >= ? AND date <= ? ORDER BY date ASC, table_id ASC, start_min ASC`
	rows, err := db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by date range: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// CreateReservationChecked re-runs the overlap check and inserts inside one
// transaction, closing the check-then-act window between the engine's check
// and the commit. Returns ErrSlotTaken when a competing writer got there
// first.
func (db *DB) CreateReservationChecked(ctx context.Context, r *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	openMin, crossing, err := windowFrame(ctx, tx, r.Date)
	if err != nil {
		return err
	}

	var overlapping int
	queryCount := `SELECT COUNT(*) FROM reservations
                   WHERE table_id = ? AND date = ? AND ` + overlapCondition
	args := append([]any{r.TableID, r.Date.Format("2006-01-02")},
		overlapArgs(openMin, crossing, r.StartMin, r.DurationMin)...)
	err = tx.QueryRowContext(ctx, queryCount, args...).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrSlotTaken
	}

	queryInsert := `INSERT INTO reservations (
                   table_id, guest_name, phone, party_size, date, start_min,
                   duration_min, status, origin, comment, created_at, updated_at, version
               ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		r.TableID, r.GuestName, r.Phone, r.PartySize,
		r.Date.Format("2006-01-02"), r.StartMin, r.DurationMin,
		r.Status, r.Origin, r.Comment, now, now, 1)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1

	return tx.Commit()
}

// RescheduleReservationChecked moves a reservation to a new table, date or
// interval. The overlap re-check runs in the same transaction as the update
// and excludes the reservation's own row, so the check sees the caller's
// prior state without colliding with it. The version guard rejects
// concurrent modifications.
func (db *DB) RescheduleReservationChecked(ctx context.Context, r *models.Reservation, fromVersion int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	openMin, crossing, err := windowFrame(ctx, tx, r.Date)
	if err != nil {
		return err
	}

	var overlapping int
	queryCount := `SELECT COUNT(*) FROM reservations
                   WHERE table_id = ? AND date = ? AND id != ? AND ` + overlapCondition
	args := append([]any{r.TableID, r.Date.Format("2006-01-02"), r.ID},
		overlapArgs(openMin, crossing, r.StartMin, r.DurationMin)...)
	err = tx.QueryRowContext(ctx, queryCount, args...).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrSlotTaken
	}

	queryUpdate := `UPDATE reservations
                    SET table_id = ?, date = ?, start_min = ?, duration_min = ?,
                        party_size = ?, version = version + 1, updated_at = ?
                    WHERE id = ? AND version = ?`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryUpdate,
		r.TableID, r.Date.Format("2006-01-02"), r.StartMin, r.DurationMin,
		r.PartySize, now, r.ID, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation in tx: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	r.UpdatedAt = now
	r.Version = fromVersion + 1
	return tx.Commit()
}

func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}
