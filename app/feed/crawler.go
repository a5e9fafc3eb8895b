package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// GenreSource lists the root pages published in the genre index.
type GenreSource interface {
	GenreURLs(ctx context.Context, indexURL string) ([]string, error)
	ProgramURLs(ctx context.Context, genreURL string) ([]string, error)
}

// Recorder stores the outcome of each root conversion.
type Recorder interface {
	RecordPage(run PageRun) error
}

// Crawler runs root conversions one after another. A root is converted at
// most once per Crawler; failures are logged and do not stop the run.
type Crawler struct {
	processor *Processor
	genres    GenreSource
	recorder  Recorder
	seen      map[string]struct{}
}

func NewCrawler(processor *Processor, genres GenreSource, recorder Recorder) *Crawler {
	return &Crawler{
		processor: processor,
		genres:    genres,
		recorder:  recorder,
		seen:      make(map[string]struct{}),
	}
}

// CrawlSummary counts the roots handled by a run.
type CrawlSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Feeds     int
}

// ProcessRoot converts a single root page and records the outcome.
func (c *Crawler) ProcessRoot(ctx context.Context, pageURL string, opts Options) ([]*Feed, error) {
	feeds, err := c.processor.Process(ctx, pageURL, opts)
	now := time.Now().UTC()

	if err != nil {
		c.record(PageRun{
			Name:        NameFromURL(pageURL),
			URL:         pageURL,
			Status:      StatusFailed,
			Error:       err.Error(),
			ProcessedAt: now,
		})
		return nil, err
	}

	if len(feeds) == 0 {
		c.record(PageRun{
			Name:        NameFromURL(pageURL),
			URL:         pageURL,
			Status:      StatusNoFeed,
			ProcessedAt: now,
		})
		return nil, nil
	}

	for _, f := range feeds {
		status := StatusOK
		if len(f.Items) == 0 {
			status = StatusEmpty
		}
		c.record(PageRun{
			Name:          f.Name,
			URL:           f.URL,
			Title:         f.Title,
			PageType:      string(f.PageType),
			ItemCount:     len(f.Items),
			Status:        status,
			ProcessedAt:   now,
			FeedUpdatedAt: latestUpdate(f.Items),
		})
	}

	return feeds, nil
}

// ProcessRoots converts every URL not seen before by this crawler.
func (c *Crawler) ProcessRoots(ctx context.Context, urls []string, opts Options) CrawlSummary {
	var summary CrawlSummary

	for _, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}
		if _, ok := c.seen[pageURL]; ok {
			summary.Skipped++
			continue
		}

		feeds, err := c.ProcessRoot(ctx, pageURL, opts)
		if err != nil {
			slog.Error("Error processing page", "url", pageURL, "error", err)
			summary.Failed++
			continue
		}

		c.seen[pageURL] = struct{}{}
		summary.Processed++
		summary.Feeds += len(feeds)
	}

	return summary
}

// CrawlGenres walks the genre index and converts every root page it lists.
func (c *Crawler) CrawlGenres(ctx context.Context, indexURL string, opts Options) (CrawlSummary, error) {
	var summary CrawlSummary
	if c.genres == nil {
		return summary, fmt.Errorf("no genre source configured")
	}

	genreURLs, err := c.genres.GenreURLs(ctx, indexURL)
	if err != nil {
		return summary, fmt.Errorf("failed to list genres: %w", err)
	}
	slog.Info("Genres discovered", "count", len(genreURLs))

	for _, genreURL := range genreURLs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		programURLs, err := c.genres.ProgramURLs(ctx, genreURL)
		if err != nil {
			return summary, fmt.Errorf("failed to list programs of %s: %w", genreURL, err)
		}
		slog.Debug("Genre page parsed", "url", genreURL, "programs", len(programURLs))

		part := c.ProcessRoots(ctx, programURLs, opts)
		summary.Processed += part.Processed
		summary.Skipped += part.Skipped
		summary.Failed += part.Failed
		summary.Feeds += part.Feeds
	}

	return summary, nil
}

func (c *Crawler) record(run PageRun) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordPage(run); err != nil {
		slog.Warn("Failed to record page run", "url", run.URL, "error", err)
	}
}
