package feed

import (
	"time"
)

// Feed processing types

type Feed struct {
	Name        string // Output file stem, last path segment of URL
	URL         string
	PageType    PageType
	Title       string
	Description string
	ImageURL    string
	Author      string
	Language    string
	OwnerEmail  string
	Categories  []string
	UpdatedAt   time.Time // Zero when the page declares no usable date
	Items       []Item
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	UpdatedAt   time.Time // Zero when create_date/create_time could not be parsed
	ImageURL    string
	Duration    string
	Season      string // Season and Episode are either both set or both empty
	Episode     string

	EnclosureURL  string
	EnclosureType string
}

// Options control a single conversion traversal.
type Options struct {
	Types     PageTypeSet
	DateOK    bool // keep catalog timestamps untouched
	Recursive bool // follow nested playlists
}

// PageRun is the outcome of converting one page, as recorded in the history.
type PageRun struct {
	Name          string
	URL           string
	Title         string
	PageType      string
	ItemCount     int
	Status        string
	Error         string
	ProcessedAt   time.Time
	FeedUpdatedAt time.Time
}

const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusNoFeed = "no_feed"
	StatusFailed = "failed"
)
