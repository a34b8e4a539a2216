package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/models"
)

func (db *DB) GetWeeklyHours(ctx context.Context, weekday int) (*models.BusinessHours, error) {
	query := `SELECT weekday, open_min, close_min, is_closed FROM business_hours WHERE weekday = ?`
	h := &models.BusinessHours{}
	err := db.QueryRowContext(ctx, query, weekday).Scan(&h.Weekday, &h.OpenMin, &h.CloseMin, &h.Closed)
	if errors.Is(err, sql.ErrNoRows) {
		// No entry means closed; the resolver decides.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly hours: %w", err)
	}
	return h, nil
}

func (db *DB) SetWeeklyHours(ctx context.Context, hours *models.BusinessHours) error {
	query := `INSERT INTO business_hours (weekday, open_min, close_min, is_closed, updated_at)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(weekday) DO UPDATE SET
                  open_min = excluded.open_min,
                  close_min = excluded.close_min,
                  is_closed = excluded.is_closed,
                  updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		hours.Weekday, hours.OpenMin, hours.CloseMin, hours.Closed, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set weekly hours: %w", err)
	}
	return nil
}

func (db *DB) GetHoursException(ctx context.Context, date time.Time) (*models.HoursException, error) {
	query := `SELECT date, is_closed, open_min, close_min, reason FROM hours_exceptions WHERE date = ?`
	exc := &models.HoursException{}
	var dateStr string
	err := db.QueryRowContext(ctx, query, date.Format("2006-01-02")).Scan(
		&dateStr, &exc.Closed, &exc.OpenMin, &exc.CloseMin, &exc.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hours exception: %w", err)
	}
	exc.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exception date %s: %w", dateStr, err)
	}
	return exc, nil
}

func (db *DB) SetHoursException(ctx context.Context, exc *models.HoursException) error {
	query := `INSERT INTO hours_exceptions (date, is_closed, open_min, close_min, reason, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(date) DO UPDATE SET
                  is_closed = excluded.is_closed,
                  open_min = excluded.open_min,
                  close_min = excluded.close_min,
                  reason = excluded.reason,
                  updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		exc.Date.Format("2006-01-02"), exc.Closed, exc.OpenMin, exc.CloseMin, exc.Reason, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set hours exception: %w", err)
	}
	return nil
}

func (db *DB) DeleteHoursException(ctx context.Context, date time.Time) error {
	query := `DELETE FROM hours_exceptions WHERE date = ?`
	_, err := db.ExecContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to delete hours exception: %w", err)
	}
	return nil
}
