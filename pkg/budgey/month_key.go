package budgey

import (
	"strings"
	"time"
)

// monthKeyLayout encodes a budget month as "MM-YY", e.g. "01-25" for
// January 2025. Keys are produced when records are created and carried
// denormalized on each record.
const monthKeyLayout = "01-06"

// MonthKeyFor derives the month key for a budget period starting at t
func MonthKeyFor(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// MonthKeyLabel renders a human-readable label for a month key, e.g.
// "January 2025". Malformed keys are returned as-is.
func MonthKeyLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

// compareMonthKeys orders month keys chronologically when both parse,
// falling back to a lexicographic comparison for malformed keys so sorting
// stays deterministic. Returns <0 when a is earlier than b.
func compareMonthKeys(a, b string) int {
	ta, errA := time.Parse(monthKeyLayout, a)
	tb, errB := time.Parse(monthKeyLayout, b)

	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA == nil:
		// Well-formed keys sort after malformed ones
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
