package koreader

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/kostats/internal/model"
)

// extractBookSummary normalizes the newer book-summary schema: one row
// per book, enriched by page_stat_data when that table exists.
func extractBookSummary(ctx context.Context, db *sql.DB, hasPageStats bool, diag *Diagnostics) ([]model.BookStat, []model.ActivityPoint, error) {
	totalsByBook := map[int64]int{}
	if hasPageStats {
		totals, err := loadTotalPages(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		totalsByBook = totals
	}

	rows, err := db.QueryContext(ctx, `SELECT id, title, pages, total_read_time, last_open, notes FROM book`)
	if err != nil {
		return nil, nil, wrapQueryErr("query book table", err)
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
			id            sql.NullInt64
			title         sql.NullString
			pages         sql.NullInt64
			totalReadTime sql.NullInt64
			lastOpen      any
			notes         sql.NullString
		)
		if err := rows.Scan(&id, &title, &pages, &totalReadTime, &lastOpen, &notes); err != nil {
			return nil, nil, wrapQueryErr("scan book row", err)
		}
		diag.RowsScanned++

		if !title.Valid || strings.TrimSpace(title.String) == "" {
			diag.RowsSkipped++
			continue
		}

		// page_stat_data carries the authoritative page count; the
		// notes blob is only a fallback.
		totalPages := 0
		if id.Valid {
			totalPages = totalsByBook[id.Int64]
		}
		if totalPages == 0 && notes.Valid {
			totalPages = parseNotesTotalPages(notes.String)
			if totalPages == 0 && notes.String != "" {
				diag.NotesDefaulted++
			}
		}

		pagesRead := 0
		if pages.Valid {
			pagesRead = int(pages.Int64)
		}
		pagesRead = clampPages(pagesRead, totalPages)

		minutes := 0
		if totalReadTime.Valid {
			minutes = int(math.Round(float64(totalReadTime.Int64) / 60))
		}
		sessions := 0
		if minutes > 0 {
			sessions = 1
		}

		stat := model.BookStat{
			Title:            title.String,
			TotalPagesRead:   pagesRead,
			TotalPages:       totalPages,
			TotalTimeMinutes: minutes,
			Sessions:         sessions,
		}
		// last_open is the only session signal in this schema, so it
		// stands in for both first and last.
		if ts, ok := parseTimestamp(lastOpen); ok {
			stat.FirstSessionDate = &ts
			stat.LastSessionDate = &ts
		} else if !absentTimestamp(lastOpen) {
			diag.TimestampsDefaulted++
		}
		books = append(books, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrapQueryErr("iterate book rows", err)
	}

	var activity []model.ActivityPoint
	if hasPageStats {
		activity, err = loadDailyActivity(ctx, db, diag)
		if err != nil {
			return nil, nil, err
		}
	}
	return books, activity, nil
}

// loadTotalPages reads the maximum observed total_pages per book from
// page_stat_data.
func loadTotalPages(ctx context.Context, db *sql.DB) (map[int64]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT id_book, MAX(total_pages) FROM page_stat_data GROUP BY id_book`)
	if err != nil {
		return nil, wrapQueryErr("query page_stat_data totals", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	totals := map[int64]int{}
	for rows.Next() {
		var idBook sql.NullInt64
		var totalPages sql.NullInt64
		if err := rows.Scan(&idBook, &totalPages); err != nil {
			return nil, wrapQueryErr("scan page_stat_data totals", err)
		}
		if idBook.Valid && totalPages.Valid && totalPages.Int64 > 0 {
			totals[idBook.Int64] = int(totalPages.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate page_stat_data totals", err)
	}
	return totals, nil
}

type dailyActivity struct {
	pages   map[string]struct{}
	seconds float64
}

// loadDailyActivity groups page_stat_data rows by the calendar date of
// start_time: durations are summed per day in seconds and converted to
// minutes once, and distinct (book, page) pairs touched that day proxy
// for pages read. Per-row sessions are often shorter than a minute, so
// rounding must not happen before the daily sum.
func loadDailyActivity(ctx context.Context, db *sql.DB, diag *Diagnostics) ([]model.ActivityPoint, error) {
	rows, err := db.QueryContext(ctx, `SELECT id_book, page, start_time, duration FROM page_stat_data ORDER BY start_time ASC`)
	if err != nil {
		return nil, wrapQueryErr("query page_stat_data activity", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	byDate := map[string]*dailyActivity{}
	for rows.Next() {
		var (
			idBook    sql.NullInt64
			page      sql.NullInt64
			startTime any
			duration  sql.NullFloat64
		)
		if err := rows.Scan(&idBook, &page, &startTime, &duration); err != nil {
			return nil, wrapQueryErr("scan page_stat_data activity", err)
		}
		ts, ok := parseTimestamp(startTime)
		if !ok {
			diag.TimestampsDefaulted++
			continue
		}
		date := ts.Format("2006-01-02")
		day, exists := byDate[date]
		if !exists {
			day = &dailyActivity{pages: map[string]struct{}{}}
			byDate[date] = day
		}
		if duration.Valid {
			day.seconds += duration.Float64
		}
		day.pages[fmt.Sprintf("%d-%d", idBook.Int64, page.Int64)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate page_stat_data activity", err)
	}

	activity := make([]model.ActivityPoint, 0, len(byDate))
	for date, day := range byDate {
		activity = append(activity, model.ActivityPoint{
			Date:  date,
			Pages: len(day.pages),
			Time:  int(math.Round(day.seconds / 60)),
		})
	}
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Date < activity[j].Date
	})
	return activity, nil
}
