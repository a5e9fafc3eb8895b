package feed

import (
	"testing"
	"time"
)

func TestParseCatalogDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"01-02-2024 10:11:12", time.Date(2024, 2, 1, 10, 11, 12, 0, time.Local)},
		{"01-02-2024 10:11", time.Date(2024, 2, 1, 10, 11, 0, 0, time.Local)},
		{"2024-02-01", time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)},
		{" 2024-02-01 ", time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseCatalogDate(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("ParseCatalogDate(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseCatalogDateInvalid(t *testing.T) {
	for _, input := range []string{"", " ", "01-02-2024 ", "2024/02/01", "yesterday", "01-02-2024 25:00"} {
		if got := ParseCatalogDate(input); !got.IsZero() {
			t.Errorf("ParseCatalogDate(%q) = %v, expected zero time", input, got)
		}
	}
}

func itemsAt(times ...time.Time) []Item {
	items := make([]Item, len(times))
	for i, ts := range times {
		items[i] = Item{GUID: string(rune('a' + i)), UpdatedAt: ts}
	}
	return items
}

func TestNormalizeDatesLeavesIdenticalTimestampsAlone(t *testing.T) {
	// Two identical instants share a calendar date, so the sequence is both
	// non-decreasing and non-increasing and no direction wins.
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	items := itemsAt(ts, ts)

	if NormalizeDates(items) {
		t.Fatal("Expected identical timestamps to be left alone")
	}

	for i, item := range items {
		if !item.UpdatedAt.Equal(ts) {
			t.Errorf("Expected item %d untouched, got %v", i, item.UpdatedAt)
		}
	}
	if items[0].GUID != "a" || items[1].GUID != "b" {
		t.Error("Expected original order to be preserved")
	}
}

func TestNormalizeDatesIncreasingWithDuplicates(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)
	items := itemsAt(day1, day1.Add(-time.Hour), day2, day2)

	NormalizeDates(items)

	for i := 1; i < len(items); i++ {
		if !items[i].UpdatedAt.After(items[i-1].UpdatedAt) {
			t.Errorf("Expected strictly increasing at %d: %v then %v", i, items[i-1].UpdatedAt, items[i].UpdatedAt)
		}
	}
	if !items[1].UpdatedAt.Equal(day1.Add(time.Second)) {
		t.Errorf("Expected second item bumped to %v, got %v", day1.Add(time.Second), items[1].UpdatedAt)
	}
	if !items[2].UpdatedAt.Equal(day2) {
		t.Errorf("Expected third item untouched, got %v", items[2].UpdatedAt)
	}
}

func TestNormalizeDatesDecreasing(t *testing.T) {
	day2 := time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	items := itemsAt(day2, day2, day2.Add(time.Hour), day1)

	if !NormalizeDates(items) {
		t.Fatal("Expected dates to be rewritten")
	}

	if !items[0].UpdatedAt.Equal(day2) {
		t.Errorf("Expected first item untouched, got %v", items[0].UpdatedAt)
	}
	for i := 1; i < len(items); i++ {
		if !items[i].UpdatedAt.Before(items[i-1].UpdatedAt) {
			t.Errorf("Expected strictly decreasing at %d: %v then %v", i, items[i-1].UpdatedAt, items[i].UpdatedAt)
		}
	}
	if !items[1].UpdatedAt.Equal(day2.Add(-time.Second)) {
		t.Errorf("Expected second item pulled to %v, got %v", day2.Add(-time.Second), items[1].UpdatedAt)
	}
	if !items[3].UpdatedAt.Equal(day1) {
		t.Errorf("Expected last item untouched, got %v", items[3].UpdatedAt)
	}
}

func TestNormalizeDatesLeavesMixedAlone(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	items := itemsAt(day1, day2, day1)

	if NormalizeDates(items) {
		t.Error("Expected mixed sequence to be left alone")
	}
	if !items[0].UpdatedAt.Equal(day1) || !items[1].UpdatedAt.Equal(day2) || !items[2].UpdatedAt.Equal(day1) {
		t.Error("Expected timestamps unchanged")
	}
}

func TestNormalizeDatesLeavesSameDayAlone(t *testing.T) {
	// Same calendar date everywhere: both directions hold.
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	items := itemsAt(base, base, base.Add(time.Hour))

	if NormalizeDates(items) {
		t.Error("Expected all-equal dates to be left alone")
	}
	if !items[1].UpdatedAt.Equal(base) {
		t.Error("Expected timestamps unchanged")
	}
}

func TestNormalizeDatesRequiresAllTimestamps(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	items := itemsAt(day1, day1, time.Time{}, day2)

	if NormalizeDates(items) {
		t.Error("Expected no rewrite when an item has no timestamp")
	}
	if !items[1].UpdatedAt.Equal(day1) {
		t.Error("Expected timestamps unchanged")
	}
}

func TestLatestUpdate(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)

	if got := latestUpdate(itemsAt(day1, time.Time{}, day2)); !got.Equal(day2) {
		t.Errorf("Expected %v, got %v", day2, got)
	}
	if got := latestUpdate(nil); !got.IsZero() {
		t.Errorf("Expected zero time, got %v", got)
	}
}
