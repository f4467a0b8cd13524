package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database"
)

// ErrUnknownStat is returned when incrementing a counter whose key was
// never seeded. Counters are defined by the feed, not created on demand.
var ErrUnknownStat = errors.New("repository: unknown stat key")

// StatsRepository handles the user-facing counters
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Increment adds one to an existing counter. Unknown keys are an error
// rather than an implicit insert.
func (r *StatsRepository) Increment(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_stats SET stat_count = stat_count + 1 WHERE stat_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to increment stat %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStat, key)
	}
	return nil
}

// Snapshot returns all counters as a map
func (r *StatsRepository) Snapshot(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT stat_key, stat_count FROM user_stats`)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		stats[key] = count
	}
	return stats, rows.Err()
}

// Stats assembles the user-facing snapshot from the raw counter map
func (r *StatsRepository) Stats(ctx context.Context) (*models.Stats, error) {
	raw, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		SuspiciousLinksDetected: raw[models.StatFlaggedLink],
		SuspiciousSMSDetected:   raw[models.StatFlaggedSMS],
		SuspiciousAppsDetected:  raw[models.StatFlaggedApp],
		VerifiedGateways:        raw[models.StatVerifiedGateway],
		TotalScannedLinks:       raw[models.StatTotalScannedLinks],
		TotalScannedSMS:         raw[models.StatTotalScannedSMS],
		TotalScannedApps:        raw[models.StatTotalScannedApps],
	}, nil
}

// Apply seeds counters that do not exist yet. Counts already accumulated on
// the device are never overwritten by feed values.
func (r *StatsRepository) Apply(ctx context.Context, q database.DBTX, entries []models.PayloadStat) (int, error) {
	applied := 0
	for _, e := range entries {
		if e.StatKey == "" {
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO user_stats (stat_key, stat_count) VALUES ($1, $2)
			ON CONFLICT (stat_key) DO NOTHING`,
			e.StatKey, e.StatCount)
		if err != nil {
			return applied, fmt.Errorf("failed to seed stat %s: %w", e.StatKey, err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}
