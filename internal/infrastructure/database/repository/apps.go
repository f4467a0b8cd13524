package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database"
)

// AppRepository handles flagged and trusted app identities
type AppRepository struct {
	pool *pgxpool.Pool
}

// NewAppRepository creates a new app signature repository
func NewAppRepository(pool *pgxpool.Pool) *AppRepository {
	return &AppRepository{pool: pool}
}

// AppMatch names which identity field tied an installed app to a signature
type AppMatch struct {
	PackageName string
	Reason      models.AppFlagReason
}

// Match checks package name, signing certificate, and APK content hash
// against the flagged set, in that order. Returns nil when nothing matches.
func (r *AppRepository) Match(ctx context.Context, packageName, signatureSHA1, contentHash string) (*AppMatch, error) {
	type probe struct {
		column string
		value  string
		reason models.AppFlagReason
	}
	probes := []probe{
		{"package_name", packageName, models.AppFlagPackage},
		{"signature_sha1", signatureSHA1, models.AppFlagSignature},
		{"apk_sha1", contentHash, models.AppFlagContentHash},
	}
	for _, p := range probes {
		if p.value == "" {
			continue
		}
		var pkg string
		query := fmt.Sprintf(
			`SELECT package_name FROM suspicious_apps WHERE %s = $1 LIMIT 1`, p.column)
		err := r.pool.QueryRow(ctx, query, p.value).Scan(&pkg)
		if err != nil {
			if isNoRows(err) {
				continue
			}
			return nil, fmt.Errorf("failed to match app by %s: %w", p.column, err)
		}
		if pkg == "" {
			pkg = packageName
		}
		return &AppMatch{PackageName: pkg, Reason: p.reason}, nil
	}
	return nil, nil
}

// IsTrusted reports whether the app is a known-good package. Market rows
// carry no certificate and trust the package name alone; sideload rows
// require the certificate to match too.
func (r *AppRepository) IsTrusted(ctx context.Context, packageName, signatureSHA1 string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM trusted_apps
			WHERE package_name = $1
			  AND (signature_sha1 = '' OR signature_sha1 = $2)
		)`, packageName, signatureSHA1,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check trusted app: %w", err)
	}
	return exists, nil
}

// Apply loads flagged app identities within the given transaction. A marker
// on the package name removes every row for that package.
func (r *AppRepository) Apply(ctx context.Context, q database.DBTX, entries []models.PayloadApp) (int, error) {
	applied := 0
	for _, e := range entries {
		pkg, remove := splitFeedEntry(e.PackageName)
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM suspicious_apps WHERE package_name = $1`, pkg); err != nil {
				return applied, fmt.Errorf("failed to delete app signature: %w", err)
			}
			continue
		}
		if pkg == "" && e.SHA1 == "" && e.APKSHA1 == "" {
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO suspicious_apps (package_name, signature_sha1, apk_sha1)
			VALUES ($1, $2, $3)
			ON CONFLICT (package_name, signature_sha1, apk_sha1) DO NOTHING`,
			pkg, e.SHA1, e.APKSHA1)
		if err != nil {
			return applied, fmt.Errorf("failed to insert app signature: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}

// ApplyTrusted loads the trusted package set within the given transaction
func (r *AppRepository) ApplyTrusted(ctx context.Context, q database.DBTX, entries []models.PayloadTrustedApp) (int, error) {
	applied := 0
	for _, e := range entries {
		pkg, remove := splitFeedEntry(e.PackageName)
		if pkg == "" {
			continue
		}
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM trusted_apps WHERE package_name = $1`, pkg); err != nil {
				return applied, fmt.Errorf("failed to delete trusted app: %w", err)
			}
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO trusted_apps (package_name, signature_sha1)
			VALUES ($1, $2)
			ON CONFLICT (package_name, signature_sha1) DO NOTHING`,
			pkg, e.SignatureSHA1)
		if err != nil {
			return applied, fmt.Errorf("failed to insert trusted app: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}
