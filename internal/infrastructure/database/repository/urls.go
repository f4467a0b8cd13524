package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database"
	"parsaban/internal/normalize"
)

// URLRepository handles suspicious link persistence
type URLRepository struct {
	pool *pgxpool.Pool
}

// NewURLRepository creates a new suspicious link repository
func NewURLRepository(pool *pgxpool.Pool) *URLRepository {
	return &URLRepository{pool: pool}
}

// URLMatch is the stored signature a lookup resolved to
type URLMatch struct {
	URL         string
	ThreatType  models.ThreatType
	Description string
	Level       models.URLMatchLevel
}

// MatchExact looks up a specific-link signature for the canonical URL.
// Returns nil when no signature matches.
func (r *URLRepository) MatchExact(ctx context.Context, canonical string) (*URLMatch, error) {
	query := `
		SELECT url, threat_type, description
		FROM suspicious_urls
		WHERE url = $1 AND is_specific_url`

	m := &URLMatch{Level: models.MatchSpecificURL}
	var threatType int
	err := r.pool.QueryRow(ctx, query, canonical).Scan(&m.URL, &threatType, &m.Description)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to match url: %w", err)
	}
	m.ThreatType = models.ThreatTypeFromCode(threatType)
	return m, nil
}

// MatchDomain looks up a whole-domain signature. Returns nil when no
// signature matches.
func (r *URLRepository) MatchDomain(ctx context.Context, domain string) (*URLMatch, error) {
	query := `
		SELECT url, threat_type, description
		FROM suspicious_urls
		WHERE url = $1 AND NOT is_specific_url`

	m := &URLMatch{Level: models.MatchDomain}
	var threatType int
	err := r.pool.QueryRow(ctx, query, domain).Scan(&m.URL, &threatType, &m.Description)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to match domain: %w", err)
	}
	m.ThreatType = models.ThreatTypeFromCode(threatType)
	return m, nil
}

// Apply loads feed entries within the given transaction. URLs are stored in
// canonical form; existing rows are left untouched and marker entries delete.
func (r *URLRepository) Apply(ctx context.Context, q database.DBTX, entries []models.PayloadURL) (int, error) {
	applied := 0
	for _, e := range entries {
		raw, remove := splitFeedEntry(e.URL)
		canonical := normalize.CanonicalURL(raw)
		if canonical == "" {
			continue
		}
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM suspicious_urls WHERE url = $1`, canonical); err != nil {
				return applied, fmt.Errorf("failed to delete url signature: %w", err)
			}
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO suspicious_urls (url, threat_type, description, is_specific_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (url) DO NOTHING`,
			canonical, e.Type, e.Description, e.IsSpecificURL != 0,
		)
		if err != nil {
			return applied, fmt.Errorf("failed to insert url signature: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}

// Count returns the number of stored link signatures
func (r *URLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suspicious_urls`).Scan(&n)
	return n, err
}
