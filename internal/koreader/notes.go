package koreader

import (
	"encoding/json"
	"strconv"
)

// parseNotesTotalPages reads a total page count out of the optional JSON
// notes blob. KoReader exports have stashed the count under several keys
// over the years, so a priority chain is tried. Malformed JSON, missing
// keys, and non-numeric values all yield 0 (unknown).
func parseNotesTotalPages(notes string) int {
	if notes == "" {
		return 0
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(notes), &doc); err != nil {
		return 0
	}
	if n, ok := positiveNumber(doc["total_pages"]); ok {
		return n
	}
	if n, ok := positiveNumber(doc["page_count"]); ok {
		return n
	}
	if nested, ok := doc["doc_props"].(map[string]any); ok {
		if n, ok := positiveNumber(nested["total_pages"]); ok {
			return n
		}
	}
	if nested, ok := doc["statistics"].(map[string]any); ok {
		if n, ok := positiveNumber(nested["total_pages"]); ok {
			return n
		}
	}
	return 0
}

func positiveNumber(v any) (int, bool) {
	switch value := v.(type) {
	case float64:
		if value > 0 {
			return int(value), true
		}
	case string:
		if n, err := strconv.ParseFloat(value, 64); err == nil && n > 0 {
			return int(n), true
		}
	}
	return 0, false
}

// clampPages bounds a page count to [0, totalPages] when the total is
// known, and to >= 0 always.
func clampPages(pages, totalPages int) int {
	if pages < 0 {
		return 0
	}
	if totalPages > 0 && pages > totalPages {
		return totalPages
	}
	return pages
}
