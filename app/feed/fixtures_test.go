package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lysyi3m/raiplaysound-rss/app/catalog"
)

// pageFixture renders a catalog page document. cards and tabs are JSON arrays.
func pageFixture(title, typology, tabs, cards string) string {
	if tabs == "" {
		tabs = "[]"
	}
	if cards == "" {
		cards = "[]"
	}
	return fmt.Sprintf(`{
  "title": %q,
  "podcast_info": {
    "description": "",
    "image": "/cropgd/cover.jpg",
    "typology": %q,
    "genres": [{"name": "Cultura"}],
    "subgenres": [{"name": "Storia"}, {"name": "Cultura"}],
    "dfp": {"escaped_genres": [{"name": "Storia"}], "escaped_typology": [{"name": "Podcast"}]},
    "metadata": {"product_sources": [{"name": "Radio3"}, {"name": "Podcast"}]}
  },
  "tab_menu": %s,
  "block": {"update_date": "", "cards": %s}
}`, title, typology, tabs, cards)
}

func episodeCard(name, date, clock, season, episode string) string {
	seasonField := ""
	if season != "" {
		seasonField += fmt.Sprintf(`, "season": %q`, season)
	}
	if episode != "" {
		seasonField += fmt.Sprintf(`, "episode": %q`, episode)
	}
	return fmt.Sprintf(`{
    "toptitle": "Title %[1]s",
    "title": "Card %[1]s",
    "uniquename": "ContentItem-%[1]s",
    "description": "About %[1]s",
    "create_date": %[2]q,
    "create_time": %[3]q,
    "weblink": "/audio/%[1]s",
    "image": "/img/%[1]s.jpg",
    "audio": {"url": "https://media.example/%[1]s.mp3", "duration": "00:10:00"}%[4]s
  }`, name, date, clock, seasonField)
}

func playlistCard(link string) string {
	return fmt.Sprintf(`{"title": "Playlist", "weblink": %q}`, link)
}

func decodePage(t *testing.T, body string) *catalog.Page {
	t.Helper()
	var page catalog.Page
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("Failed to decode page fixture: %v\n%s", err, body)
	}
	return &page
}

// fakeFetcher serves pages keyed by URL and records every fetch.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errors  map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  make(map[string]string),
		errors: make(map[string]error),
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (*catalog.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, pageURL)
	if err, ok := f.errors[pageURL]; ok {
		return nil, err
	}
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, &catalog.StatusError{URL: pageURL + ".json", StatusCode: 404, Status: "404 Not Found"}
	}

	var page catalog.Page
	if err := json.NewDecoder(strings.NewReader(body)).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (f *fakeFetcher) fetchCount(pageURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, u := range f.fetched {
		if u == pageURL {
			count++
		}
	}
	return count
}

func feedURLs(feeds []*Feed) []string {
	urls := make([]string, len(feeds))
	for i, f := range feeds {
		urls[i] = f.URL
	}
	return urls
}
