package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const settingDefaultDuration = "default_duration_min"

// GetDefaultDuration performs a live read of the venue default. A missing row
// yields 0; the duration policy applies its own fallback.
func (db *DB) GetDefaultDuration(ctx context.Context) (int, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := db.QueryRowContext(ctx, query, settingDefaultDuration).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get default duration: %w", err)
	}

	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse default duration %q: %w", value, err)
	}
	return minutes, nil
}

func (db *DB) SetDefaultDuration(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("default duration must be positive, got %d", minutes)
	}
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
              ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, settingDefaultDuration, strconv.Itoa(minutes), time.Now())
	if err != nil {
		return fmt.Errorf("failed to set default duration: %w", err)
	}
	return nil
}
