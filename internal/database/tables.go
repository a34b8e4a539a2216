package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/models"
)

const tableColumns = `id, number, capacity, zone, is_active, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*models.Table, error) {
	t := &models.Table{}
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Zone, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTablesByCapacity returns active tables in the capacity band, smallest
// capacity first, lowest table number breaking ties. Allocation relies on
// this order.
func (db *DB) ListTablesByCapacity(ctx context.Context, minCapacity, maxCapacity int) ([]*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables
              WHERE is_active = 1 AND capacity >= ? AND capacity <= ?
              ORDER BY capacity ASC, number ASC`
	rows, err := db.QueryContext(ctx, query, minCapacity, maxCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables by capacity: %w", err)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (db *DB) ListTables(ctx context.Context) ([]*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables ORDER BY number ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (db *DB) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
	t, err := scanTable(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return t, nil
}

func (db *DB) CreateTable(ctx context.Context, table *models.Table) error {
	query := `INSERT INTO tables (number, capacity, zone, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		table.Number, table.Capacity, table.Zone, table.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	table.ID = id
	table.CreatedAt = now
	table.UpdatedAt = now
	return nil
}

func (db *DB) UpdateTable(ctx context.Context, table *models.Table) error {
	query := `UPDATE tables SET number = ?, capacity = ?, zone = ?, is_active = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		table.Number, table.Capacity, table.Zone, table.IsActive, time.Now(), table.ID)
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeactivateTable(ctx context.Context, id int64) error {
	query := `UPDATE tables SET is_active = 0, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate table: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
