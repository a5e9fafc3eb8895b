package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

const crawlTaskName = "genres"

// CrawlGenresTask converts every root page listed by the genre index. Each
// execution starts with an empty seen set.
type CrawlGenresTask struct {
	Task
	processor *feed.Processor
	genres    feed.GenreSource
	recorder  feed.Recorder
	indexURL  string
	opts      feed.Options
}

func NewCrawlGenresTask(processor *feed.Processor, genres feed.GenreSource, recorder feed.Recorder, indexURL string, opts feed.Options) *CrawlGenresTask {
	return &CrawlGenresTask{
		Task:      NewTask(TaskTypeCrawlGenres, crawlTaskName),
		processor: processor,
		genres:    genres,
		recorder:  recorder,
		indexURL:  indexURL,
		opts:      opts,
	}
}

func (t *CrawlGenresTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	crawler := feed.NewCrawler(t.processor, t.genres, t.recorder)
	summary, err := crawler.CrawlGenres(ctx, t.indexURL, t.opts)
	if err != nil {
		return fmt.Errorf("failed to crawl genres: %w", err)
	}

	slog.Info("Task completed",
		"type", "CrawledGenres",
		"duration", t.GetDuration(),
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"feeds", summary.Feeds)

	return nil
}
