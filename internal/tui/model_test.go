package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kostats/internal/model"
)

func TestBookRowsFormatsCells(t *testing.T) {
	last := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	books := []model.BookStat{
		{Title: "My Book", TotalPagesRead: 100, TotalPages: 250, TotalTimeMinutes: 95, Sessions: 2, LastSessionDate: &last},
		{Title: "Loose Notes", TotalPagesRead: 42},
	}
	rows := bookRows(books)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first[0] != "My Book" || first[1] != "100" || first[2] != "250" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[3] != "40%" {
		t.Fatalf("expected completion cell 40%%, got %q", first[3])
	}
	if first[4] != "1h 35m" || first[6] != "2024-01-05" {
		t.Fatalf("unexpected time or date cell: %v", first)
	}
	second := rows[1]
	if second[2] != "-" || second[3] != "-" || second[6] != "-" {
		t.Fatalf("expected placeholder cells for unknown values: %v", second)
	}
}

func TestFitLinesPadsAndClips(t *testing.T) {
	out := fitLines("ab\ncd\nef", 4, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "ab  " || lines[1] != "cd  " {
		t.Fatalf("expected padded lines, got %q", lines)
	}

	out = fitLines("ab", 3, 3)
	lines = strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "   " || lines[2] != "   " {
		t.Fatalf("expected blank fill lines, got %q", lines)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("hello", 10); got != "hello" {
		t.Fatalf("expected untouched line, got %q", got)
	}
	if got := truncateLine("hello world", 5); got != "hello" {
		t.Fatalf("expected truncated line, got %q", got)
	}
}

func TestTruncateLineWideRunes(t *testing.T) {
	// Each CJK rune is two display cells wide.
	if got := truncateLine("日本語のタイトル", 4); got != "日本" {
		t.Fatalf("expected two wide runes in 4 cells, got %q", got)
	}
	// A wide rune that does not fully fit is dropped.
	if got := truncateLine("ab日本", 3); got != "ab" {
		t.Fatalf("expected wide rune dropped at the boundary, got %q", got)
	}
}

func TestRenderOverviewEmpty(t *testing.T) {
	if got := renderOverview(model.Empty(), 100, 10); got != "No books found." {
		t.Fatalf("expected empty notice, got %q", got)
	}
}

func TestRenderActivityEmpty(t *testing.T) {
	got := renderActivity(nil, model.ReportConfig{Window: 1, PlotHeight: 4}, 80)
	if !strings.Contains(got, "No daily activity recorded.") {
		t.Fatalf("expected empty notice, got %q", got)
	}
}
