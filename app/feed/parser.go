package feed

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Summary describes a generated feed file as a podcast client would see it.
type Summary struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
	ImageURL    string
	Categories  []string
	ItemCount   int
	LatestItem  *time.Time
	Items       []SummaryItem
}

type SummaryItem struct {
	GUID         string
	Title        string
	PublishedAt  *time.Time
	EnclosureURL string
	Season       string
	Episode      string
	Duration     string
}

// Parser reads generated feeds back through gofeed.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Summary, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	summary := &Summary{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
		ItemCount:   len(parsed.Items),
	}

	if parsed.Image != nil {
		summary.ImageURL = parsed.Image.URL
	}

	if parsed.ITunesExt != nil {
		summary.Author = parsed.ITunesExt.Author
		for _, category := range parsed.ITunesExt.Categories {
			if category != nil {
				summary.Categories = append(summary.Categories, category.Text)
			}
		}
	}

	for _, item := range parsed.Items {
		summaryItem := SummaryItem{
			GUID:        item.GUID,
			Title:       item.Title,
			PublishedAt: item.PublishedParsed,
		}

		if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
			summaryItem.EnclosureURL = item.Enclosures[0].URL
		}

		if item.ITunesExt != nil {
			summaryItem.Season = item.ITunesExt.Season
			summaryItem.Episode = item.ITunesExt.Episode
			summaryItem.Duration = item.ITunesExt.Duration
		}

		if item.PublishedParsed != nil && (summary.LatestItem == nil || item.PublishedParsed.After(*summary.LatestItem)) {
			summary.LatestItem = item.PublishedParsed
		}

		summary.Items = append(summary.Items, summaryItem)
	}

	return summary, nil
}
