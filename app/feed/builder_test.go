package feed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testPageURL = "https://www.raiplaysound.it/programmi/ilprogramma"

func TestBuilderMetadata(t *testing.T) {
	page := decodePage(t, pageFixture("Il Programma", "Programmi Radio", "", "[]"))
	page.Block.UpdateDate = "05-03-2024 12:30:00"

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if feed.Title != "Il Programma" {
		t.Errorf("Expected title 'Il Programma', got: %s", feed.Title)
	}
	if feed.Description != "Il Programma" {
		t.Errorf("Expected blank description to fall back to title, got: %s", feed.Description)
	}
	if feed.URL != testPageURL {
		t.Errorf("Expected URL %s, got: %s", testPageURL, feed.URL)
	}
	if feed.Name != "ilprogramma" {
		t.Errorf("Expected name 'ilprogramma', got: %s", feed.Name)
	}
	if feed.ImageURL != "https://www.raiplaysound.it/cropgd/cover.jpg" {
		t.Errorf("Expected resolved image URL, got: %s", feed.ImageURL)
	}
	if feed.PageType != PageTypeProgram {
		t.Errorf("Expected PROGRAM, got: %s", feed.PageType)
	}
	if feed.Author != "RaiPlaySound" || feed.Language != "it-it" || feed.OwnerEmail == "" {
		t.Errorf("Expected publisher constants, got: %q %q %q", feed.Author, feed.Language, feed.OwnerEmail)
	}

	expectedUpdate := time.Date(2024, 3, 5, 12, 30, 0, 0, time.Local)
	if !feed.UpdatedAt.Equal(expectedUpdate) {
		t.Errorf("Expected update %v, got %v", expectedUpdate, feed.UpdatedAt)
	}
}

func TestBuilderCategoriesDeduplicated(t *testing.T) {
	page := decodePage(t, pageFixture("P", "", "", "[]"))

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"Cultura", "Storia", "Podcast", "Radio3"}
	if strings.Join(feed.Categories, "|") != strings.Join(expected, "|") {
		t.Errorf("Expected categories %v, got %v", expected, feed.Categories)
	}
}

func TestBuilderCategoriesWithoutProductSources(t *testing.T) {
	page := decodePage(t, pageFixture("P", "", "", "[]"))
	page.PodcastInfo.Metadata = nil

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feed.Categories) != 3 {
		t.Errorf("Expected 3 categories, got %v", feed.Categories)
	}
}

func TestBuilderItems(t *testing.T) {
	cards := "[" + episodeCard("1", "01-01-2024", "10:00:00", "1", "2") + "," +
		`{"title": "No audio here", "weblink": "/audio/none"}` + "]"
	page := decodePage(t, pageFixture("P", "", "", cards))

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(feed.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(feed.Items))
	}

	item := feed.Items[0]
	if item.Title != "Title 1" {
		t.Errorf("Expected title from toptitle, got: %s", item.Title)
	}
	if item.GUID != "timendum-raiplaysound-ContentItem-1" {
		t.Errorf("Expected prefixed GUID, got: %s", item.GUID)
	}
	if item.Link != "https://www.raiplaysound.it/audio/1" {
		t.Errorf("Expected resolved link, got: %s", item.Link)
	}
	if item.Description != "About 1" {
		t.Errorf("Expected description, got: %s", item.Description)
	}
	if item.EnclosureURL != "https://media.example/1.mp3" || item.EnclosureType != "audio/mpeg" {
		t.Errorf("Unexpected enclosure: %s %s", item.EnclosureURL, item.EnclosureType)
	}
	if item.Duration != "00:10:00" {
		t.Errorf("Expected duration, got: %s", item.Duration)
	}
	if item.Season != "1" || item.Episode != "2" {
		t.Errorf("Expected season 1 episode 2, got: %q %q", item.Season, item.Episode)
	}
	if item.ImageURL != "https://www.raiplaysound.it/img/1.jpg" {
		t.Errorf("Expected resolved image, got: %s", item.ImageURL)
	}
	expected := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	if !item.UpdatedAt.Equal(expected) {
		t.Errorf("Expected update %v, got %v", expected, item.UpdatedAt)
	}

	if !feed.UpdatedAt.Equal(expected) {
		t.Errorf("Expected feed update to fall back to first episode, got %v", feed.UpdatedAt)
	}
}

func TestBuilderDownloadableAudioPreferred(t *testing.T) {
	card := `{"toptitle": "T", "uniquename": "u", "create_date": "01-01-2024", "create_time": "10:00",
		"audio": {"url": "https://y/ep.mp3", "duration": "01:00"},
		"downloadable_audio": {"url": "http://x/ep.mp3"}}`
	page := decodePage(t, pageFixture("P", "", "", "["+card+"]"))

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := feed.Items[0].EnclosureURL; got != "https://x/ep.mp3" {
		t.Errorf("Expected https://x/ep.mp3, got %s", got)
	}
}

func TestBuilderDescriptionFallsBackToTitle(t *testing.T) {
	card := `{"toptitle": "Top", "title": "Card title", "uniquename": "u", "create_date": "01-01-2024", "create_time": "10:00",
		"audio": {"url": "https://y/ep.mp3", "duration": 60}}`
	page := decodePage(t, pageFixture("P", "", "", "["+card+"]"))

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := feed.Items[0].Description; got != "Card title" {
		t.Errorf("Expected description to fall back to card title, got %s", got)
	}
	if got := feed.Items[0].Duration; got != "60" {
		t.Errorf("Expected numeric duration to be kept, got %s", got)
	}
}

func TestBuilderPartialSeasonDiscarded(t *testing.T) {
	cards := "[" + episodeCard("1", "01-01-2024", "10:00", "3", "") + "," +
		episodeCard("2", "01-01-2024", "11:00", "", "4") + "]"
	page := decodePage(t, pageFixture("P", "", "", cards))

	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	for _, item := range feed.Items {
		if item.Season != "" || item.Episode != "" {
			t.Errorf("Expected partial season/episode to be dropped, got %q %q", item.Season, item.Episode)
		}
	}
}

func TestBuilderPlaylistCallback(t *testing.T) {
	cards := "[" + playlistCard("/playlist/uno") + "," + episodeCard("1", "01-01-2024", "10:00", "", "") + "," +
		playlistCard("/playlist/due") + "]"
	page := decodePage(t, pageFixture("P", "", "", cards))

	var links []string
	feed, err := NewBuilder(DefaultPublisher()).Run(testPageURL, page, func(link string) error {
		links = append(links, link)
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(feed.Items) != 1 {
		t.Errorf("Expected playlist cards to contribute no items, got %d", len(feed.Items))
	}
	if strings.Join(links, ",") != "/playlist/uno,/playlist/due" {
		t.Errorf("Expected playlist links in source order, got %v", links)
	}

	boom := errors.New("boom")
	_, err = NewBuilder(DefaultPublisher()).Run(testPageURL, page, func(string) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected callback error to propagate, got %v", err)
	}
}

func TestBuilderCustomPublisher(t *testing.T) {
	page := decodePage(t, pageFixture("P", "", "", "["+episodeCard("1", "01-01-2024", "10:00", "", "")+"]"))
	publisher := Publisher{Author: "Me", Language: "en", OwnerEmail: "me@example.com", GUIDPrefix: "mine-"}

	feed, err := NewBuilder(publisher).Run(testPageURL, page, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Author != "Me" || feed.Language != "en" || feed.OwnerEmail != "me@example.com" {
		t.Errorf("Expected custom publisher, got %q %q %q", feed.Author, feed.Language, feed.OwnerEmail)
	}
	if feed.Items[0].GUID != "mine-ContentItem-1" {
		t.Errorf("Expected custom GUID prefix, got %s", feed.Items[0].GUID)
	}
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://www.raiplaysound.it/programmi/ilprogramma":  "ilprogramma",
		"https://www.raiplaysound.it/playlist/lista/":        "lista",
		"https://www.raiplaysound.it/audiolibri/unlibro":     "unlibro",
		"plain":                                              "plain",
	}
	for input, expected := range tests {
		if got := NameFromURL(input); got != expected {
			t.Errorf("NameFromURL(%q) = %q, expected %q", input, got, expected)
		}
	}
	if got := FileNameFromURL("https://x/programmi/abc"); got != "abc.xml" {
		t.Errorf("Expected abc.xml, got %s", got)
	}
}
