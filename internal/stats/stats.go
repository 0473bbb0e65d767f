// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/kostats/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TopByValue returns up to n entries sorted by descending value; ties
// break alphabetically. n <= 0 keeps all entries.
func TopByValue(entries []model.NameValue, n int) []model.NameValue {
	out := append([]model.NameValue(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Name < out[j].Name
		}
		return out[i].Value > out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ActivitySeries splits the daily activity into pages and minutes
// series aligned by day, in ascending date order.
func ActivitySeries(activity []model.ActivityPoint) (pages, minutes []float64) {
	pages = make([]float64, len(activity))
	minutes = make([]float64, len(activity))
	for i, point := range activity {
		pages[i] = float64(point.Pages)
		minutes[i] = float64(point.Time)
	}
	return pages, minutes
}
