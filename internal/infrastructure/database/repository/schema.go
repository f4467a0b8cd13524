// Package repository implements the signature store on PostgreSQL: the
// suspicious-entity tables the matching engine queries, the user counters,
// and the refresh history.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion is bumped whenever the table layout changes. The store is a
// disposable cache of the remote feed, so a version mismatch drops
// everything and reseeds instead of migrating in place.
const SchemaVersion = 3

var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS schema_meta (
		version INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suspicious_urls (
		url             TEXT PRIMARY KEY,
		threat_type     INT  NOT NULL DEFAULT 1,
		description     TEXT NOT NULL DEFAULT '',
		is_specific_url BOOLEAN NOT NULL DEFAULT FALSE,
		detected_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suspicious_senders (
		sender      TEXT PRIMARY KEY,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suspicious_messages (
		hash        TEXT PRIMARY KEY,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suspicious_keywords (
		keyword TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS suspicious_apps (
		package_name   TEXT NOT NULL DEFAULT '',
		signature_sha1 TEXT NOT NULL DEFAULT '',
		apk_sha1       TEXT NOT NULL DEFAULT '',
		detected_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (package_name, signature_sha1, apk_sha1)
	)`,
	`CREATE TABLE IF NOT EXISTS trusted_apps (
		package_name   TEXT NOT NULL,
		signature_sha1 TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (package_name, signature_sha1)
	)`,
	`CREATE TABLE IF NOT EXISTS tips (
		id  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		tip TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		stat_key   TEXT PRIMARY KEY,
		stat_count BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS update_history (
		id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		update_type INT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_suspicious_apps_signature
		ON suspicious_apps (signature_sha1) WHERE signature_sha1 <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_suspicious_apps_apk
		ON suspicious_apps (apk_sha1) WHERE apk_sha1 <> ''`,
}

var tableNames = []string{
	"update_history",
	"user_stats",
	"tips",
	"trusted_apps",
	"suspicious_apps",
	"suspicious_keywords",
	"suspicious_messages",
	"suspicious_senders",
	"suspicious_urls",
	"schema_meta",
}

// EnsureSchema creates the tables on first run and rebuilds them from
// scratch when the recorded version differs from SchemaVersion. It reports
// whether the store was (re)created empty and needs seeding.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) (fresh bool, err error) {
	var version int
	err = pool.QueryRow(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&version)
	switch {
	case err == nil && version == SchemaVersion:
		return false, nil
	case err == nil:
		if err := dropAll(ctx, pool); err != nil {
			return false, err
		}
	case !isNoRows(err) && !isUndefinedTable(err):
		return false, fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, ddl := range tableDDL {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return false, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if _, err := pool.Exec(ctx, `DELETE FROM schema_meta`); err != nil {
		return false, err
	}
	if _, err := pool.Exec(ctx, `INSERT INTO schema_meta (version) VALUES ($1)`, SchemaVersion); err != nil {
		return false, fmt.Errorf("failed to record schema version: %w", err)
	}
	return true, nil
}

func dropAll(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range tableNames {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+name+` CASCADE`); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}
