package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database"
	"parsaban/pkg/logger"
)

// Repositories bundles the signature store tables behind one handle
type Repositories struct {
	URLs    *URLRepository
	SMS     *SMSRepository
	Apps    *AppRepository
	Tips    *TipRepository
	Stats   *StatsRepository
	History *HistoryRepository

	db  *database.Postgres
	log *logger.Logger
}

// New wires all repositories over one connection pool
func New(db *database.Postgres, log *logger.Logger) *Repositories {
	pool := db.Pool()
	return &Repositories{
		URLs:    NewURLRepository(pool),
		SMS:     NewSMSRepository(pool),
		Apps:    NewAppRepository(pool),
		Tips:    NewTipRepository(pool),
		Stats:   NewStatsRepository(pool),
		History: NewHistoryRepository(pool),
		db:      db,
		log:     log.WithComponent("signature-store"),
	}
}

// ApplyCounts reports how many rows each table section of a feed payload
// actually changed
type ApplyCounts struct {
	Links    int `json:"links"`
	Senders  int `json:"senders"`
	Messages int `json:"messages"`
	Keywords int `json:"keywords"`
	Apps     int `json:"apps"`
	Trusted  int `json:"trusted"`
	Tips     int `json:"tips"`
	Stats    int `json:"stats"`
}

// Rebuild applies a full feed payload to the store, one transaction per
// table. A failing table rolls back alone; earlier tables stay applied, so
// a partially failed refresh still leaves a consistent per-table state.
func (r *Repositories) Rebuild(ctx context.Context, payload *models.Payload) (ApplyCounts, error) {
	var counts ApplyCounts

	steps := []struct {
		name  string
		dst   *int
		apply func(tx pgx.Tx) (int, error)
	}{
		{"suspicious_urls", &counts.Links, func(tx pgx.Tx) (int, error) {
			return r.URLs.Apply(ctx, tx, payload.SuspiciousLinks)
		}},
		{"suspicious_senders", &counts.Senders, func(tx pgx.Tx) (int, error) {
			return r.SMS.ApplySenders(ctx, tx, payload.SuspiciousSenders)
		}},
		{"suspicious_messages", &counts.Messages, func(tx pgx.Tx) (int, error) {
			return r.SMS.ApplyMessages(ctx, tx, payload.SuspiciousMessages)
		}},
		{"suspicious_keywords", &counts.Keywords, func(tx pgx.Tx) (int, error) {
			return r.SMS.ApplyKeywords(ctx, tx, payload.SuspiciousKeywords)
		}},
		{"suspicious_apps", &counts.Apps, func(tx pgx.Tx) (int, error) {
			return r.Apps.Apply(ctx, tx, payload.SuspiciousApps)
		}},
		{"trusted_apps", &counts.Trusted, func(tx pgx.Tx) (int, error) {
			return r.Apps.ApplyTrusted(ctx, tx, payload.TrustedApps)
		}},
		{"tips", &counts.Tips, func(tx pgx.Tx) (int, error) {
			return r.Tips.Apply(ctx, tx, payload.Tips)
		}},
		{"user_stats", &counts.Stats, func(tx pgx.Tx) (int, error) {
			return r.Stats.Apply(ctx, tx, payload.UserStats)
		}},
	}

	for _, step := range steps {
		err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
			n, applyErr := step.apply(tx)
			*step.dst = n
			return applyErr
		})
		if err != nil {
			r.log.Error().Err(err).Str("table", step.name).Msg("feed apply failed")
			return counts, err
		}
		r.log.Debug().Str("table", step.name).Int("applied", *step.dst).Msg("feed section applied")
	}

	return counts, nil
}
