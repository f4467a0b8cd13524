package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/infrastructure/database"
)

// TipRepository handles the security tip pool shown to users
type TipRepository struct {
	pool *pgxpool.Pool
}

// NewTipRepository creates a new tip repository
func NewTipRepository(pool *pgxpool.Pool) *TipRepository {
	return &TipRepository{pool: pool}
}

// Random returns one tip drawn uniformly from the pool, or "" when the
// pool is empty
func (r *TipRepository) Random(ctx context.Context) (string, error) {
	var tip string
	err := r.pool.QueryRow(ctx,
		`SELECT tip FROM tips ORDER BY random() LIMIT 1`,
	).Scan(&tip)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to pick tip: %w", err)
	}
	return tip, nil
}

// All returns every stored tip
func (r *TipRepository) All(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT tip FROM tips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	defer rows.Close()

	var tips []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

// Apply loads tips within the given transaction
func (r *TipRepository) Apply(ctx context.Context, q database.DBTX, tips []string) (int, error) {
	applied := 0
	for _, t := range tips {
		tip, remove := splitFeedEntry(t)
		if tip == "" {
			continue
		}
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM tips WHERE tip = $1`, tip); err != nil {
				return applied, fmt.Errorf("failed to delete tip: %w", err)
			}
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO tips (tip) VALUES ($1)
			ON CONFLICT (tip) DO NOTHING`, tip)
		if err != nil {
			return applied, fmt.Errorf("failed to insert tip: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}
