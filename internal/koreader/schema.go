package koreader

import (
	"context"
	"database/sql"
	"fmt"
)

// Variant identifies which known KoReader schema shape a database uses.
// KoReader has shipped several metadata schema versions; detection happens
// once and downstream extraction switches on the detected value.
type Variant int

const (
	// VariantUnknown means no recognized table set was found.
	VariantUnknown Variant = iota
	// VariantBookSummary is the newer schema: one authoritative row per
	// book, optionally enriched by page_stat_data session rows.
	VariantBookSummary
	// VariantBookmarkLog is the older schema: one bookmark row per
	// progress-update event, many rows per book.
	VariantBookmarkLog
)

// String returns a short name for the variant.
func (v Variant) String() string {
	switch v {
	case VariantBookSummary:
		return "book-summary"
	case VariantBookmarkLog:
		return "bookmark-log"
	default:
		return "unknown"
	}
}

// detectVariant lists the database's tables and selects the extraction
// strategy. The book table wins over bookmark because it is authoritative.
func detectVariant(ctx context.Context, db *sql.DB) (Variant, []string, error) {
	tables, err := listTables(ctx, db)
	if err != nil {
		return VariantUnknown, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch {
	case hasTable(tables, "book"):
		return VariantBookSummary, tables, nil
	case hasTable(tables, "bookmark"):
		return VariantBookmarkLog, tables, nil
	default:
		return VariantUnknown, tables, fmt.Errorf("%w: expected a book or bookmark table", ErrSchemaMismatch)
	}
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

func hasTable(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}
