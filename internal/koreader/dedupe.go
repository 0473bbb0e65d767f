package koreader

import (
	"time"

	"github.com/verte-zerg/kostats/internal/model"
)

// dedupe collapses raw per-row candidates to one record per title.
// The candidate with the latest last-session date wins; when dates are
// absent or equal the first one encountered is kept. Surviving records
// stay in first-seen order.
//
// The merge rule is inferred from KoReader exports and is a known
// approximation, not an exact session reconstruction.
func dedupe(books []model.BookStat) []model.BookStat {
	out := make([]model.BookStat, 0, len(books))
	index := map[string]int{}
	for _, book := range books {
		i, seen := index[book.Title]
		if !seen {
			index[book.Title] = len(out)
			out = append(out, book)
			continue
		}
		if laterThan(book.LastSessionDate, out[i].LastSessionDate) {
			out[i] = book
		}
	}
	return out
}

func laterThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
