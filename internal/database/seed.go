package database

import (
	"context"
	"fmt"

	"tablebook/internal/models"
)

// SeedTables inserts configured tables that do not exist yet, matching on
// table number. Existing rows are left alone: operators may have edited them.
func (db *DB) SeedTables(ctx context.Context, tables []*models.Table) error {
	for _, t := range tables {
		var existing int64
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables WHERE number = ?`, t.Number).Scan(&existing)
		if err != nil {
			return fmt.Errorf("failed to check table %d: %w", t.Number, err)
		}
		if existing > 0 {
			continue
		}
		if err := db.CreateTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// SeedWeeklyHours writes weekly entries only for weekdays with no row yet.
func (db *DB) SeedWeeklyHours(ctx context.Context, hours []*models.BusinessHours) error {
	for _, h := range hours {
		existing, err := db.GetWeeklyHours(ctx, h.Weekday)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := db.SetWeeklyHours(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultDuration sets the venue default only when unset.
func (db *DB) SeedDefaultDuration(ctx context.Context, minutes int) error {
	current, err := db.GetDefaultDuration(ctx)
	if err != nil {
		return err
	}
	if current > 0 {
		return nil
	}
	return db.SetDefaultDuration(ctx, minutes)
}
