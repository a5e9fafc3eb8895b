package database

import (
	"time"
)

// Page is the latest recorded conversion of one feed.
type Page struct {
	Name            string // Feed file stem, unique
	URL             string
	Title           string
	PageType        string
	ItemCount       int
	Status          string
	Error           string
	LastProcessedAt time.Time
	FeedUpdatedAt   *time.Time // Latest item timestamp, nil when the feed has no dated items
}
