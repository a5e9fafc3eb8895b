package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

// Version is set at build time via -ldflags
var Version = "dev"

const dbFileName = ".raiplaysound.db"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Folder          string        `short:"f" long:"folder" env:"FOLDER" default:"." description:"Destination folder for generated feeds"`
	Types           string        `long:"types" env:"TYPES" default:"SERIES,GENRE" description:"Comma separated page types to convert (PROGRAM, SERIES, GENRE, FILM)"`
	DateOK          bool          `long:"dateok" env:"DATE_OK" description:"Keep catalog dates as published"`
	Rate            float64       `long:"rate" env:"RATE" default:"0" description:"Maximum catalog requests per minute (0 disables the limit)"`
	LogLevel        string        `long:"log-level" env:"LOG_LEVEL" default:"INFO" description:"Log level (DEBUG, INFO, WARNING, ERROR)"`
	UserAgent       string        `long:"user-agent" env:"USER_AGENT" default:"RaiPlaySound RSS/1.0" description:"User agent string for HTTP requests"`
	Timeout         time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"Timeout of a single catalog request"`
	Timezone        string        `long:"timezone" env:"TZ" default:"Europe/Rome" description:"Timezone for timestamps (e.g., UTC, Europe/Rome)"`
	DBPath          string        `long:"db-path" env:"DB_PATH" description:"SQLite file recording conversion history (empty disables it)"`
	PublisherConfig string        `long:"publisher-config" env:"PUBLISHER_CONFIG" description:"YAML file overriding publisher metadata"`

	Single singleCmd `command:"single" description:"Convert the given pages"`
	All    allCmd    `command:"all" description:"Crawl the genre index and convert every program"`
	Serve  serveCmd  `command:"serve" description:"Regenerate configured sources periodically and serve the feeds over HTTP"`
}

type singleCmd struct {
	Recursive bool `short:"r" long:"recursive" description:"Follow nested playlists"`

	Args struct {
		URLs []string `positional-arg-name:"URL" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

type allCmd struct{}

type serveCmd struct {
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source definition files"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for page conversion"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	CrawlInterval     int    `long:"crawl-interval" env:"CRAWL_INTERVAL" default:"0" description:"Genre crawl interval in seconds (0 disables it)"`
}

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("failed to parse configuration: no command given")
	}

	types, err := feed.ParsePageTypes(strings.Split(raw.Types, ","))
	if err != nil {
		return nil, fmt.Errorf("invalid --types: %w", err)
	}

	level, err := parseLogLevel(raw.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		Command:         Command(parser.Active.Name),
		Folder:          raw.Folder,
		Types:           types,
		DateOK:          raw.DateOK,
		PublisherConfig: raw.PublisherConfig,
		RatePerMinute:   raw.Rate,
		UserAgent:       raw.UserAgent,
		Timeout:         raw.Timeout,
		DBPath:          raw.DBPath,
		LogLevel:        level,
		Timezone:        raw.Timezone,
		Version:         GetVersion(),
	}

	switch cfg.Command {
	case CommandSingle:
		cfg.Recursive = raw.Single.Recursive
		cfg.URLs = raw.Single.Args.URLs
	case CommandAll:
		cfg.Recursive = true
	case CommandServe:
		cfg.Recursive = true
		cfg.Port = raw.Serve.Port
		cfg.SourcesDir = raw.Serve.SourcesDir
		cfg.SchedulerInterval = raw.Serve.SchedulerInterval
		cfg.WorkerCount = raw.Serve.WorkerCount
		cfg.APIAccessKey = raw.Serve.APIAccessKey
		cfg.CrawlInterval = raw.Serve.CrawlInterval
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(cfg.Folder, dbFileName)
		}
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid --log-level %q", name)
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
