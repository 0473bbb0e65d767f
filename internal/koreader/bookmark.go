package koreader

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/verte-zerg/kostats/internal/model"
)

// UnknownTitle is the sentinel title for rows whose content_id yields an
// empty file name.
const UnknownTitle = "Unknown Title"

const (
	docWrapPrefix = "(doc: "
	docWrapSuffix = ").lua"
)

// parseBookTitle derives a book title from a bookmark content_id, which
// is a document path optionally wrapped as "(doc: <path>).lua".
func parseBookTitle(contentID string) string {
	pathPart := contentID
	if strings.HasPrefix(contentID, docWrapPrefix) && strings.HasSuffix(contentID, docWrapSuffix) {
		pathPart = contentID[len(docWrapPrefix) : len(contentID)-len(docWrapSuffix)]
	}
	if idx := strings.LastIndex(pathPart, "/"); idx >= 0 {
		pathPart = pathPart[idx+1:]
	}
	if dot := strings.LastIndex(pathPart, "."); dot > 0 {
		pathPart = pathPart[:dot]
	}
	if pathPart == "" {
		return UnknownTitle
	}
	return pathPart
}

// extractBookmarkLog normalizes the older bookmark-log schema, one row
// per progress-update event. Time spent and session counts are not
// recoverable from this table.
func extractBookmarkLog(ctx context.Context, db *sql.DB, diag *Diagnostics) ([]model.BookStat, error) {
	rows, err := db.QueryContext(ctx, `SELECT content_id, progress, page, notes, datetime FROM bookmark`)
	if err != nil {
		return nil, wrapQueryErr("query bookmark table", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var books []model.BookStat
	for rows.Next() {
		var (
			contentID sql.NullString
			progress  sql.NullFloat64
			page      sql.NullInt64
			notes     sql.NullString
			datetime  any
		)
		if err := rows.Scan(&contentID, &progress, &page, &notes, &datetime); err != nil {
			return nil, wrapQueryErr("scan bookmark row", err)
		}
		diag.RowsScanned++

		if !contentID.Valid || strings.TrimSpace(contentID.String) == "" {
			diag.RowsSkipped++
			continue
		}
		title := parseBookTitle(contentID.String)

		totalPages := 0
		if notes.Valid {
			totalPages = parseNotesTotalPages(notes.String)
			if totalPages == 0 && notes.String != "" {
				diag.NotesDefaulted++
			}
		}

		pagesRead := 0
		switch {
		case totalPages > 0 && progress.Valid:
			pagesRead = int(math.Round(progress.Float64 * float64(totalPages)))
		case page.Valid:
			pagesRead = int(page.Int64)
		}
		pagesRead = clampPages(pagesRead, totalPages)

		stat := model.BookStat{
			Title:          title,
			TotalPagesRead: pagesRead,
			TotalPages:     totalPages,
		}
		if ts, ok := parseTimestamp(datetime); ok {
			stat.FirstSessionDate = &ts
			stat.LastSessionDate = &ts
		} else if !absentTimestamp(datetime) {
			diag.TimestampsDefaulted++
		}
		books = append(books, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate bookmark rows", err)
	}
	return books, nil
}
