package cfg

import (
	"log/slog"
	"time"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

type Command string

const (
	CommandSingle Command = "single"
	CommandAll    Command = "all"
	CommandServe  Command = "serve"
)

type Cfg struct {
	Command Command

	// Conversion
	Folder          string
	Types           feed.PageTypeSet
	DateOK          bool
	Recursive       bool
	URLs            []string // single only
	PublisherConfig string

	// Catalog client
	RatePerMinute float64
	UserAgent     string
	Timeout       time.Duration

	// History
	DBPath string

	// Serve
	Port              string
	SourcesDir        string
	SchedulerInterval int
	WorkerCount       int
	APIAccessKey      string
	CrawlInterval     int

	// Application metadata
	LogLevel slog.Level
	Timezone string
	Version  string
}

func (c *Cfg) Options() feed.Options {
	return feed.Options{
		Types:     c.Types,
		DateOK:    c.DateOK,
		Recursive: c.Recursive,
	}
}
