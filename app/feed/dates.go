package feed

import (
	"strings"
	"time"
)

var catalogDateLayouts = []string{
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02",
}

// ParseCatalogDate tries each catalog layout in turn and returns the zero time
// when none matches. Catalog dates carry no zone and are read as local time.
func ParseCatalogDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range catalogDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}

	return time.Time{}
}

// NormalizeDates makes item timestamps strictly monotonic when their calendar
// dates already are monotonic in one direction, so readers sorting by date keep
// the catalog order. Items keep their position; only colliding timestamps move,
// by one second at a time. It reports whether the sequence was rewritten.
func NormalizeDates(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.UpdatedAt.IsZero() {
			return false
		}
	}

	increasing, decreasing := true, true
	for i := 1; i < len(items); i++ {
		prev, cur := calendarDate(items[i-1].UpdatedAt), calendarDate(items[i].UpdatedAt)
		if cur.Before(prev) {
			increasing = false
		}
		if cur.After(prev) {
			decreasing = false
		}
	}

	switch {
	case increasing && !decreasing:
		last := time.Unix(0, 0)
		for i := range items {
			if !items[i].UpdatedAt.After(last) {
				items[i].UpdatedAt = last.Add(time.Second)
			}
			last = items[i].UpdatedAt
		}
		return true
	case decreasing && !increasing:
		last := items[0].UpdatedAt.Add(time.Second)
		for i := range items {
			if !items[i].UpdatedAt.Before(last) {
				items[i].UpdatedAt = last.Add(-time.Second)
			}
			last = items[i].UpdatedAt
		}
		return true
	default:
		return false
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func latestUpdate(items []Item) time.Time {
	var latest time.Time
	for _, item := range items {
		if item.UpdatedAt.After(latest) {
			latest = item.UpdatedAt
		}
	}
	return latest
}
