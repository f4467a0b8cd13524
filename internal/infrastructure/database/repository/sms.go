package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/database"
	"parsaban/internal/normalize"
)

// SMSRepository handles the three SMS signature tables: flagged sender
// numbers, hashed campaign messages, and scam keywords.
type SMSRepository struct {
	pool *pgxpool.Pool
}

// NewSMSRepository creates a new SMS signature repository
func NewSMSRepository(pool *pgxpool.Pool) *SMSRepository {
	return &SMSRepository{pool: pool}
}

// IsSuspiciousSender reports whether the sender number is flagged
func (r *SMSRepository) IsSuspiciousSender(ctx context.Context, sender string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM suspicious_senders WHERE sender = $1)`,
		strings.TrimSpace(sender),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to match sender: %w", err)
	}
	return exists, nil
}

// IsSuspiciousMessageHash reports whether the content hash belongs to a
// known campaign message
func (r *SMSRepository) IsSuspiciousMessageHash(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM suspicious_messages WHERE hash = $1)`,
		hash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to match message hash: %w", err)
	}
	return exists, nil
}

// Keywords returns all stored scam keywords. The engine scans normalized
// message text against the full set; it is small by construction.
func (r *SMSRepository) Keywords(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT keyword FROM suspicious_keywords`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// ApplySenders loads flagged sender numbers within the given transaction
func (r *SMSRepository) ApplySenders(ctx context.Context, q database.DBTX, entries []models.PayloadSender) (int, error) {
	applied := 0
	for _, e := range entries {
		sender, remove := splitFeedEntry(strings.TrimSpace(e.SenderNumber))
		if sender == "" {
			continue
		}
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM suspicious_senders WHERE sender = $1`, sender); err != nil {
				return applied, fmt.Errorf("failed to delete sender signature: %w", err)
			}
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO suspicious_senders (sender) VALUES ($1)
			ON CONFLICT (sender) DO NOTHING`, sender)
		if err != nil {
			return applied, fmt.Errorf("failed to insert sender signature: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}

// ApplyMessages hashes the raw feed messages and stores only the hashes.
// Deletion markers carry the hash itself rather than the original text.
func (r *SMSRepository) ApplyMessages(ctx context.Context, q database.DBTX, entries []models.PayloadMessage) (int, error) {
	applied := 0
	for _, e := range entries {
		raw, remove := splitFeedEntry(e.Message)
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM suspicious_messages WHERE hash = $1`, raw); err != nil {
				return applied, fmt.Errorf("failed to delete message signature: %w", err)
			}
			continue
		}
		hash := normalize.MessageHash(raw)
		if hash == "" {
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO suspicious_messages (hash) VALUES ($1)
			ON CONFLICT (hash) DO NOTHING`, hash)
		if err != nil {
			return applied, fmt.Errorf("failed to insert message signature: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}

// ApplyKeywords loads scam keywords within the given transaction. Keywords
// are stored normalized so matching needs no folding at query time.
func (r *SMSRepository) ApplyKeywords(ctx context.Context, q database.DBTX, entries []string) (int, error) {
	applied := 0
	for _, e := range entries {
		raw, remove := splitFeedEntry(e)
		keyword := normalize.NormalizeText(raw)
		if keyword == "" {
			continue
		}
		if remove {
			if _, err := q.Exec(ctx, `DELETE FROM suspicious_keywords WHERE keyword = $1`, keyword); err != nil {
				return applied, fmt.Errorf("failed to delete keyword: %w", err)
			}
			continue
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO suspicious_keywords (keyword) VALUES ($1)
			ON CONFLICT (keyword) DO NOTHING`, keyword)
		if err != nil {
			return applied, fmt.Errorf("failed to insert keyword: %w", err)
		}
		applied += int(tag.RowsAffected())
	}
	return applied, nil
}
