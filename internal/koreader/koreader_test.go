package koreader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestParseBookmarkLog(t *testing.T) {
	data := createFixture(t, []string{
		createBookmarkTable,
		`INSERT INTO bookmark VALUES ('(doc: /storage/Books/My Book.epub).lua', 0.1, 5, '{"total_pages": 250}', '2023-01-05 10:00:00');`,
		`INSERT INTO bookmark VALUES ('(doc: /storage/Books/My Book.epub).lua', 0.4, 12, '{"total_pages": 250}', '2024-01-05 10:00:00');`,
		`INSERT INTO bookmark VALUES ('/mnt/x/README', NULL, 42, 'not json', 1700000000);`,
		`INSERT INTO bookmark VALUES (NULL, 0.5, 10, NULL, NULL);`,
		`INSERT INTO bookmark VALUES ('/books/over.epub', NULL, 500, '{"total_pages": 100}', NULL);`,
	})

	overall, diag, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diag.Variant != VariantBookmarkLog {
		t.Fatalf("expected bookmark-log variant, got %s", diag.Variant)
	}
	if overall.TotalBooks != 3 {
		t.Fatalf("expected 3 unique books, got %d", overall.TotalBooks)
	}
	if overall.TotalPagesRead != 242 {
		t.Fatalf("expected 242 total pages read, got %d", overall.TotalPagesRead)
	}
	if overall.TotalTimeMinutes != 0 || overall.TotalSessions != 0 {
		t.Fatalf("expected no time or sessions from bookmark log, got %d/%d",
			overall.TotalTimeMinutes, overall.TotalSessions)
	}

	byTitle := map[string]int{}
	for _, book := range overall.AllBookStats {
		byTitle[book.Title] = book.TotalPagesRead
	}
	// progress 0.4 of 250 pages rounds to 100; the 2024 row wins dedup.
	if byTitle["My Book"] != 100 {
		t.Fatalf("expected My Book at 100 pages, got %d", byTitle["My Book"])
	}
	if byTitle["README"] != 42 {
		t.Fatalf("expected README at 42 pages, got %d", byTitle["README"])
	}
	if byTitle["over"] != 100 {
		t.Fatalf("expected over clamped to 100 pages, got %d", byTitle["over"])
	}

	if diag.RowsSkipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", diag.RowsSkipped)
	}
	if diag.NotesDefaulted != 1 {
		t.Fatalf("expected 1 defaulted notes blob, got %d", diag.NotesDefaulted)
	}
	if len(overall.ReadingActivity) != 0 {
		t.Fatalf("expected no activity from bookmark log, got %d", len(overall.ReadingActivity))
	}
}

func TestParseBookSummary(t *testing.T) {
	data := createFixture(t, []string{
		createBookTable,
		createPageStatDataTable,
		`INSERT INTO book VALUES (1, 'Alpha', 120, 3600, 1700000000, NULL);`,
		`INSERT INTO book VALUES (2, 'Beta', 300, 90, 1700000000000, '{"total_pages": 200}');`,
		`INSERT INTO book VALUES (3, '  ', 50, 600, NULL, NULL);`,
		`INSERT INTO book VALUES (4, 'Gamma', 0, 0, NULL, NULL);`,
		`INSERT INTO page_stat_data VALUES (1, 1, 1700000000, 60, 100);`,
		`INSERT INTO page_stat_data VALUES (1, 2, 1700000500, 90, 150);`,
		`INSERT INTO page_stat_data VALUES (1, 2, 1700086400, 30, 150);`,
	})

	overall, diag, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diag.Variant != VariantBookSummary {
		t.Fatalf("expected book-summary variant, got %s", diag.Variant)
	}
	if overall.TotalBooks != 3 {
		t.Fatalf("expected 3 books, got %d", overall.TotalBooks)
	}
	if diag.RowsSkipped != 1 {
		t.Fatalf("expected blank-title row skipped, got %d", diag.RowsSkipped)
	}

	books := overall.AllBookStats
	if books[0].Title != "Alpha" || books[1].Title != "Beta" || books[2].Title != "Gamma" {
		t.Fatalf("unexpected book order: %+v", books)
	}

	alpha := books[0]
	// MAX(total_pages) across Alpha's page_stat_data rows is 150.
	if alpha.TotalPages != 150 {
		t.Fatalf("expected Alpha total pages 150, got %d", alpha.TotalPages)
	}
	if alpha.TotalTimeMinutes != 60 || alpha.Sessions != 1 {
		t.Fatalf("expected Alpha 60 minutes / 1 session, got %d/%d", alpha.TotalTimeMinutes, alpha.Sessions)
	}
	if alpha.LastSessionDate == nil || alpha.LastSessionDate.Year() != 2023 {
		t.Fatalf("expected Alpha last session in 2023, got %v", alpha.LastSessionDate)
	}

	beta := books[1]
	if beta.TotalPages != 200 {
		t.Fatalf("expected Beta total pages 200 from notes, got %d", beta.TotalPages)
	}
	if beta.TotalPagesRead != 200 {
		t.Fatalf("expected Beta pages clamped to 200, got %d", beta.TotalPagesRead)
	}
	if beta.TotalTimeMinutes != 2 {
		t.Fatalf("expected Beta 90s to round to 2 minutes, got %d", beta.TotalTimeMinutes)
	}
	if beta.LastSessionDate == nil || !beta.LastSessionDate.Equal(*alpha.LastSessionDate) {
		t.Fatalf("expected 13-digit last_open to match 10-digit instant, got %v", beta.LastSessionDate)
	}

	gamma := books[2]
	if gamma.Sessions != 0 || gamma.TotalTimeMinutes != 0 {
		t.Fatalf("expected Gamma with no time and no sessions, got %+v", gamma)
	}

	if overall.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", overall.TotalSessions)
	}
	if overall.TotalTimeMinutes != 62 {
		t.Fatalf("expected 62 total minutes, got %d", overall.TotalTimeMinutes)
	}

	// Gamma contributes nothing and has no known total: dropped from charts.
	if len(overall.PagesReadPerBook) != 2 || len(overall.TimeSpentPerBook) != 2 {
		t.Fatalf("expected 2 chart entries each, got %d/%d",
			len(overall.PagesReadPerBook), len(overall.TimeSpentPerBook))
	}

	activity := overall.ReadingActivity
	if len(activity) != 2 {
		t.Fatalf("expected 2 activity days, got %d", len(activity))
	}
	if activity[0].Date != "2023-11-14" || activity[1].Date != "2023-11-15" {
		t.Fatalf("expected ascending dates, got %+v", activity)
	}
	if activity[0].Pages != 2 || activity[0].Time != 3 {
		t.Fatalf("expected day one with 2 pages / 3 minutes, got %+v", activity[0])
	}
	if activity[1].Pages != 1 || activity[1].Time != 1 {
		t.Fatalf("expected day two with 1 page / 1 minute, got %+v", activity[1])
	}
}

func TestParseActivitySumsSecondsPerDay(t *testing.T) {
	stmts := []string{
		createBookTable,
		createPageStatDataTable,
		`INSERT INTO book VALUES (1, 'Alpha', 120, 600, 1700000000, NULL);`,
	}
	// Ten 20-second page bursts on the same day: 200 seconds total.
	for i := 0; i < 10; i++ {
		stmts = append(stmts, fmt.Sprintf(
			`INSERT INTO page_stat_data VALUES (1, %d, %d, 20, 150);`, i+1, 1700000000+i*60))
	}
	overall, _, err := Parse(context.Background(), createFixture(t, stmts))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(overall.ReadingActivity) != 1 {
		t.Fatalf("expected 1 activity day, got %d", len(overall.ReadingActivity))
	}
	day := overall.ReadingActivity[0]
	// Sub-minute rows must accumulate before rounding: 200s is 3 minutes.
	if day.Time != 3 {
		t.Fatalf("expected 3 minutes from 200 seconds, got %d", day.Time)
	}
	if day.Pages != 10 {
		t.Fatalf("expected 10 distinct pages, got %d", day.Pages)
	}
}

func TestParsePrefersBookTable(t *testing.T) {
	data := createFixture(t, []string{
		createBookTable,
		createBookmarkTable,
		`INSERT INTO book VALUES (1, 'Alpha', 10, 60, NULL, NULL);`,
		`INSERT INTO bookmark VALUES ('/x/ignored.epub', 0.5, 5, NULL, NULL);`,
	})
	overall, diag, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diag.Variant != VariantBookSummary {
		t.Fatalf("expected book table to take precedence, got %s", diag.Variant)
	}
	if overall.TotalBooks != 1 || overall.AllBookStats[0].Title != "Alpha" {
		t.Fatalf("expected only the book table to be read, got %+v", overall.AllBookStats)
	}
}

func TestParseNeverOpenedBook(t *testing.T) {
	data := createFixture(t, []string{
		createBookTable,
		`INSERT INTO book VALUES (1, 'Shelved', 0, 0, 0, NULL);`,
		`INSERT INTO book VALUES (2, 'Broken', 10, 60, 'nonsense', NULL);`,
	})
	overall, diag, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	shelved := overall.AllBookStats[0]
	if shelved.FirstSessionDate != nil || shelved.LastSessionDate != nil {
		t.Fatalf("expected no session dates for a never-opened book, got %+v", shelved)
	}
	// A last_open of 0 means never opened; only genuinely unparseable
	// values count as defaulted.
	if diag.TimestampsDefaulted != 1 {
		t.Fatalf("expected 1 defaulted timestamp, got %d", diag.TimestampsDefaulted)
	}
}

func TestParseEmptyTable(t *testing.T) {
	data := createFixture(t, []string{createBookmarkTable})
	overall, _, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if overall.TotalBooks != 0 || overall.TotalPagesRead != 0 || overall.TotalTimeMinutes != 0 || overall.TotalSessions != 0 {
		t.Fatalf("expected all-zero counts, got %+v", overall)
	}
	if len(overall.AllBookStats) != 0 || len(overall.PagesReadPerBook) != 0 || len(overall.ReadingActivity) != 0 {
		t.Fatalf("expected empty sequences, got %+v", overall)
	}
}

func TestParseInvalidInput(t *testing.T) {
	_, _, err := Parse(context.Background(), []byte("definitely not a database"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseSchemaMismatch(t *testing.T) {
	data := createFixture(t, []string{`CREATE TABLE unrelated (id INTEGER);`})
	_, diag, err := Parse(context.Background(), data)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if diag.Variant != VariantUnknown {
		t.Fatalf("expected unknown variant, got %s", diag.Variant)
	}
	if len(diag.Tables) != 1 || diag.Tables[0] != "unrelated" {
		t.Fatalf("expected table listing in diagnostics, got %v", diag.Tables)
	}
}

func TestParseIdempotent(t *testing.T) {
	data := createFixture(t, []string{
		createBookTable,
		createPageStatDataTable,
		`INSERT INTO book VALUES (1, 'Alpha', 120, 3600, 1700000000, NULL);`,
		`INSERT INTO page_stat_data VALUES (1, 1, 1700000000, 60, 150);`,
	})
	first, _, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, _, err := Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical models:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
