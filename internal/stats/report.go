// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/kostats/internal/model"
)

const maxBarWidth = 20

// RenderSummary prints the overall totals block.
func RenderSummary(w io.Writer, overall model.OverallStats) error {
	if overall.TotalBooks == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Books: %d\n", overall.TotalBooks); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Pages read: %d\n", overall.TotalPagesRead); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time spent: %s\n", FormatMinutes(overall.TotalTimeMinutes)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", overall.TotalSessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Active days: %d\n", len(overall.ReadingActivity)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderBookTable prints the per-book breakdown.
func RenderBookTable(w io.Writer, books []model.BookStat) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Books"); err != nil {
		return err
	}

	headers := []string{"Title", "Read", "Total", "Done", "Time", "Sessions", "Last Read"}
	rows := make([][]string, 0, len(books))
	for _, book := range books {
		done := "-"
		if c := book.Completion(); c >= 0 {
			done = fmt.Sprintf("%.0f%%", c*100)
		}
		total := "-"
		if book.TotalPages > 0 {
			total = fmt.Sprintf("%d", book.TotalPages)
		}
		lastRead := "-"
		if book.LastSessionDate != nil {
			lastRead = book.LastSessionDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			book.Title,
			fmt.Sprintf("%d", book.TotalPagesRead),
			total,
			done,
			FormatMinutes(book.TotalTimeMinutes),
			fmt.Sprintf("%d", book.Sessions),
			lastRead,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTopBooks prints a horizontal bar section for a chart projection.
func RenderTopBooks(w io.Writer, title string, entries []model.NameValue, top int) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	selected := TopByValue(entries, top)
	maxVal := 0
	for _, e := range selected {
		if e.Value > maxVal {
			maxVal = e.Value
		}
	}
	rows := make([][]string, 0, len(selected))
	for _, e := range selected {
		rows = append(rows, []string{
			e.Name,
			fmt.Sprintf("%d", e.Value),
			bar(e.Value, maxVal),
		})
	}
	for _, line := range formatTable([]string{"Book", "Value", ""}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderActivity prints the daily reading activity plot.
func RenderActivity(w io.Writer, activity []model.ActivityPoint, window, totalWidth, height int, useColor bool) error {
	if len(activity) == 0 {
		_, err := fmt.Fprintln(w, "No daily activity recorded.")
		return err
	}
	pages, minutes := ActivitySeries(activity)
	pages = MovingAverage(pages, window)
	minutes = MovingAverage(minutes, window)

	header := fmt.Sprintf("Daily Activity (%s to %s)", activity[0].Date, activity[len(activity)-1].Date)
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, header, []Series{
		{Name: "Pages", Values: pages},
		{Name: "Minutes", Values: minutes},
	}, width, height, useColor)
}

// FormatMinutes renders a minute count as a compact duration.
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", rest)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}

func bar(value, maxVal int) string {
	if value <= 0 || maxVal <= 0 {
		return ""
	}
	width := value * maxBarWidth / maxVal
	if width < 1 {
		width = 1
	}
	return strings.Repeat("▇", width)
}
