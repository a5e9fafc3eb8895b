package database

import (
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

type PageRepository interface {
	GetPage(name string) (*Page, error)
	ListPages() ([]Page, error)
	GetPageCount() (int, error)
	GetStatusCounts() (map[string]int, error)

	RecordPage(run feed.PageRun) error
}

var _ PageRepository = (*SQLPageRepository)(nil)
var _ feed.Recorder = (*SQLPageRepository)(nil)
