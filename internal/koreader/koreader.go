// Package koreader extracts reading statistics from KoReader
// metadata.sqlite exports. The input is an opaque byte buffer; the
// output is a fully populated statistics model. Two schema variants are
// recognized (see Variant); anything else is rejected.
package koreader

import (
	"context"
	"fmt"
	"os"

	"github.com/verte-zerg/kostats/internal/model"
)

// Diagnostics reports non-fatal observations made during extraction.
// Field-level parse problems never abort the pipeline; they only show
// up here as counters.
type Diagnostics struct {
	Variant             Variant
	Tables              []string
	RowsScanned         int
	RowsSkipped         int
	NotesDefaulted      int
	TimestampsDefaulted int
}

// Parse runs the full pipeline over a raw database buffer. It is a pure
// function of the buffer: the same input always yields an equal model.
// On failure the returned error is (or wraps) ErrInvalidInput or
// ErrSchemaMismatch and the returned model is the empty sentinel.
func Parse(ctx context.Context, data []byte) (model.OverallStats, Diagnostics, error) {
	var diag Diagnostics
	if !looksLikeSQLite(data) {
		return model.Empty(), diag, fmt.Errorf("%w: missing sqlite header", ErrInvalidInput)
	}

	path, cleanup, err := spillBuffer(data)
	if err != nil {
		return model.Empty(), diag, err
	}
	defer cleanup()

	db, err := openDatabase(path)
	if err != nil {
		return model.Empty(), diag, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	variant, tables, err := detectVariant(ctx, db)
	diag.Variant = variant
	diag.Tables = tables
	if err != nil {
		return model.Empty(), diag, err
	}

	var (
		books    []model.BookStat
		activity []model.ActivityPoint
	)
	switch variant {
	case VariantBookSummary:
		books, activity, err = extractBookSummary(ctx, db, hasTable(tables, "page_stat_data"), &diag)
	case VariantBookmarkLog:
		books, err = extractBookmarkLog(ctx, db, &diag)
	}
	if err != nil {
		return model.Empty(), diag, err
	}

	return buildOverall(dedupe(books), activity), diag, nil
}

// ParseFile reads a database file whole and runs Parse on it.
func ParseFile(ctx context.Context, path string) (model.OverallStats, Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Empty(), Diagnostics{}, fmt.Errorf("failed to read database file: %w", err)
	}
	return Parse(ctx, data)
}

func wrapQueryErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidInput, op, err)
}
