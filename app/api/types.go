package api

import (
	"github.com/lysyi3m/raiplaysound-rss/app/database"
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
	"github.com/lysyi3m/raiplaysound-rss/app/tasks"
)

type ParserInterface interface {
	Run(data []byte) (*feed.Summary, error)
}

var _ ParserInterface = (*feed.Parser)(nil)

type Handler struct {
	sourceCache *sources.Cache
	pageRepo    database.PageRepository
	parser      ParserInterface
	scheduler   tasks.TaskSchedulerInterface
	folder      string
}
