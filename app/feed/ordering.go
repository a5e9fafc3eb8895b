package feed

import (
	"sort"
	"strconv"
	"strings"
)

// OrderItems sorts by season and episode when every item has both, otherwise
// newest first.
func OrderItems(items []Item) {
	if len(items) == 0 {
		return
	}

	for _, item := range items {
		if item.Season == "" || item.Episode == "" {
			sortChronological(items)
			return
		}
	}

	keys := make([]int, len(items))
	numeric := true
	for i, item := range items {
		season, errSeason := strconv.Atoi(strings.TrimSpace(item.Season))
		episode, errEpisode := strconv.Atoi(strings.TrimSpace(item.Episode))
		if errSeason != nil || errEpisode != nil {
			numeric = false
			break
		}
		keys[i] = season*10000 + episode
	}

	if numeric {
		sortByKey(items, keys)
		return
	}

	// Non-numeric labels: zero padding keeps short numbers ahead of long ones.
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = zeroPad(item.Season, 5) + zeroPad(item.Episode, 5)
	}
	sortByKey(items, labels)
}

func sortByKey[K int | string](items []Item, keys []K) {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	sorted := make([]Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

func sortChronological(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].UpdatedAt, items[j].UpdatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

// zeroPad left-pads s with zeros up to width, keeping a leading sign first.
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := strings.Repeat("0", width-len(s))
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}
