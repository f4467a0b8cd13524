package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// deletionPrefix marks incremental feed entries that remove an existing
// signature instead of adding one. Only a leading dash counts; dashes inside
// the value are ordinary characters.
const deletionPrefix = "-"

// splitFeedEntry separates a feed value from its deletion marker. The
// returned value has the marker stripped.
func splitFeedEntry(raw string) (value string, remove bool) {
	if strings.HasPrefix(raw, deletionPrefix) {
		return strings.TrimPrefix(raw, deletionPrefix), true
	}
	return raw, false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	// 42P01 undefined_table
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
