package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/model"
)

const snapshotColumns = `id, fetched_at, source, total_item_price, total_items, total_locations, total_labels`

// SaveSnapshot records a fetched statistics document and sets snapshot.ID.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	stats := snapshot.Statistics
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (fetched_at, source, total_item_price, total_items, total_locations, total_labels)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.FetchedAt.UTC(),
		snapshot.Source,
		nullFloat(stats.TotalItemPrice),
		nullFloat(stats.TotalItems),
		nullFloat(stats.TotalLocations),
		nullFloat(stats.TotalLabels),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read snapshot id: %w", err)
	}
	snapshot.ID = id

	return nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var snapshots []model.Snapshot
	for rows.Next() {
		snapshot, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// LatestSnapshot returns the most recent snapshot, or common.ErrNotFound.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return snapshot, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	var price, items, locations, labels sql.NullFloat64

	err := row.Scan(
		&snapshot.ID,
		&snapshot.FetchedAt,
		&snapshot.Source,
		&price,
		&items,
		&locations,
		&labels,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snapshot.Statistics = model.GroupStatistics{
		TotalItemPrice: floatPtr(price),
		TotalItems:     floatPtr(items),
		TotalLocations: floatPtr(locations),
		TotalLabels:    floatPtr(labels),
	}

	return &snapshot, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Float64(n.Float64)
}
