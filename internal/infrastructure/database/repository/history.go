package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/domain/models"
)

// HistoryRepository records completed signature refreshes
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new update history repository
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Log records a completed refresh
func (r *HistoryRepository) Log(ctx context.Context, updateType models.UpdateType) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO update_history (update_type) VALUES ($1)`, int(updateType))
	if err != nil {
		return fmt.Errorf("failed to log update: %w", err)
	}
	return nil
}

// Last returns the most recent refresh, or nil when none has happened
func (r *HistoryRepository) Last(ctx context.Context) (*models.UpdateRecord, error) {
	rec := &models.UpdateRecord{}
	var updateType int
	err := r.pool.QueryRow(ctx, `
		SELECT id, update_type, occurred_at
		FROM update_history
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1`,
	).Scan(&rec.ID, &updateType, &rec.Timestamp)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read update history: %w", err)
	}
	rec.Type = models.UpdateType(updateType)
	return rec, nil
}

// Recent returns up to limit refreshes, newest first
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]models.UpdateRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, update_type, occurred_at
		FROM update_history
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list update history: %w", err)
	}
	defer rows.Close()

	var records []models.UpdateRecord
	for rows.Next() {
		var rec models.UpdateRecord
		var updateType int
		var at time.Time
		if err := rows.Scan(&rec.ID, &updateType, &at); err != nil {
			return nil, err
		}
		rec.Type = models.UpdateType(updateType)
		rec.Timestamp = at
		records = append(records, rec)
	}
	return records, rows.Err()
}
