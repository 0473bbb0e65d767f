// Package model defines shared data structures.
package model

import "time"

// BookStat is the canonical per-book record produced by normalization.
// Title is the dedup key and is never empty; unknown totals are zero.
type BookStat struct {
	Title            string
	TotalPagesRead   int
	TotalPages       int
	TotalTimeMinutes int
	Sessions         int
	FirstSessionDate *time.Time
	LastSessionDate  *time.Time
}

// Completion returns the fraction of the book read, or -1 when the
// total page count is unknown.
func (b BookStat) Completion() float64 {
	if b.TotalPages <= 0 {
		return -1
	}
	return float64(b.TotalPagesRead) / float64(b.TotalPages)
}

// NameValue is a chart-ready projection entry.
type NameValue struct {
	Name  string
	Value int
}

// ActivityPoint aggregates reading activity for one calendar day.
type ActivityPoint struct {
	Date  string // YYYY-MM-DD
	Pages int
	Time  int // minutes
}

// OverallStats is the complete aggregate output of one processed file.
// It is always fully populated; Empty() is the failure sentinel.
type OverallStats struct {
	TotalBooks       int
	TotalPagesRead   int
	TotalTimeMinutes int
	TotalSessions    int
	ReadingActivity  []ActivityPoint
	PagesReadPerBook []NameValue
	TimeSpentPerBook []NameValue
	AllBookStats     []BookStat
}

// Empty returns the all-zero OverallStats with empty, non-nil sequences.
func Empty() OverallStats {
	return OverallStats{
		ReadingActivity:  []ActivityPoint{},
		PagesReadPerBook: []NameValue{},
		TimeSpentPerBook: []NameValue{},
		AllBookStats:     []BookStat{},
	}
}

// ReportConfig defines rendering options for stats output.
type ReportConfig struct {
	Top        int // books shown in chart sections; 0 means all
	Window     int // moving average window for the activity plot
	PlotHeight int
	Color      bool
}
