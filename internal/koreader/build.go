package koreader

import "github.com/verte-zerg/kostats/internal/model"

// buildOverall assembles the final aggregate model from deduplicated
// book records and the optional daily activity series.
func buildOverall(books []model.BookStat, activity []model.ActivityPoint) model.OverallStats {
	out := model.Empty()
	for _, book := range books {
		out.TotalPagesRead += book.TotalPagesRead
		out.TotalTimeMinutes += book.TotalTimeMinutes
		out.TotalSessions += book.Sessions
	}
	out.TotalBooks = len(books)

	// Chart projections drop books that contribute nothing and whose
	// total page count is unknown; they would only clutter the charts.
	for _, book := range books {
		if book.TotalPagesRead > 0 || book.TotalPages > 0 {
			out.PagesReadPerBook = append(out.PagesReadPerBook, model.NameValue{
				Name:  book.Title,
				Value: book.TotalPagesRead,
			})
		}
		if book.TotalTimeMinutes > 0 || book.TotalPages > 0 {
			out.TimeSpentPerBook = append(out.TimeSpentPerBook, model.NameValue{
				Name:  book.Title,
				Value: book.TotalTimeMinutes,
			})
		}
	}

	out.AllBookStats = append(out.AllBookStats, books...)
	out.ReadingActivity = append(out.ReadingActivity, activity...)
	return out
}
