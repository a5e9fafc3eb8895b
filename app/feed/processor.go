package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/lysyi3m/raiplaysound-rss/app/catalog"
)

// PageFetcher retrieves catalog page documents.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*catalog.Page, error)
}

var _ PageFetcher = (*catalog.Client)(nil)

// Processor converts catalog pages into feed files written under folder.
// It holds no per-traversal state and can be shared.
type Processor struct {
	fetcher   PageFetcher
	builder   *Builder
	generator *Generator
	folder    string
}

func NewProcessor(fetcher PageFetcher, builder *Builder, generator *Generator, folder string) *Processor {
	return &Processor{
		fetcher:   fetcher,
		builder:   builder,
		generator: generator,
		folder:    folder,
	}
}

// Process converts pageURL and, when opts.Recursive is set, every playlist
// reachable from it. The result is flat: the page's own feed first, then the
// feeds of nested playlists in discovery order. A page filtered out by
// opts.Types, or one the catalog refuses to serve, yields no feeds and no error.
func (p *Processor) Process(ctx context.Context, pageURL string, opts Options) ([]*Feed, error) {
	return p.process(ctx, pageURL, opts, nil)
}

func (p *Processor) process(ctx context.Context, pageURL string, opts Options, ancestors []string) ([]*Feed, error) {
	page, err := p.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		if errors.Is(err, catalog.ErrHTTPStatus) {
			slog.Warn("Page fetch failed", "url", pageURL, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
	}

	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("malformed page %s: %w", pageURL, err)
	}

	pageType := PageTypeFromTypology(page.PodcastInfo.Typology)
	if !opts.Types.Accepts(pageType) {
		slog.Info("Skipped page", "url", pageURL, "type", pageType)
		return nil, nil
	}

	exp := &expander{
		processor: p,
		pageURL:   pageURL,
		opts:      opts,
		ancestors: append(slices.Clip(ancestors), pageURL),
	}

	for _, tab := range page.TabMenu {
		if tab.ContentType == "playlist" {
			if err := exp.extend(ctx, tab.Weblink); err != nil {
				return nil, err
			}
		}
	}

	feed, err := p.builder.Run(pageURL, page, func(link string) error {
		return exp.extend(ctx, link)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build feed for %s: %w", pageURL, err)
	}

	if len(feed.Items) == 0 && len(exp.feeds) == 0 {
		slog.Info("Empty page", "url", pageURL)
	}

	if len(feed.Items) > 0 {
		if !opts.DateOK {
			NormalizeDates(feed.Items)
		}
		OrderItems(feed.Items)

		if err := p.write(feed); err != nil {
			return nil, err
		}
	}

	return append([]*Feed{feed}, exp.feeds...), nil
}

func (p *Processor) write(feed *Feed) error {
	data, err := p.generator.Run(feed)
	if err != nil {
		return fmt.Errorf("failed to render feed %s: %w", feed.URL, err)
	}

	path := filepath.Join(p.folder, FileNameFromURL(feed.URL))
	if err := WriteFileAtomic(path, data, latestUpdate(feed.Items)); err != nil {
		return fmt.Errorf("failed to write feed %s: %w", path, err)
	}

	slog.Info("Feed written", "path", path, "items", len(feed.Items))
	return nil
}

// expander collects the feeds of playlists nested under one page. Sibling
// dedup looks at the feeds accumulated so far; the ancestor chain stops
// playlists that link back to a page being converted higher up.
type expander struct {
	processor *Processor
	pageURL   string
	opts      Options
	ancestors []string
	feeds     []*Feed
}

func (e *expander) extend(ctx context.Context, link string) error {
	if !e.opts.Recursive {
		return nil
	}

	target, err := resolveURL(e.pageURL, link)
	if err != nil {
		return fmt.Errorf("invalid playlist link %q: %w", link, err)
	}
	if target == "" || target == e.pageURL {
		return nil
	}

	for _, f := range e.feeds {
		if f.URL == target {
			return nil
		}
	}

	if slices.Contains(e.ancestors, target) {
		slog.Warn("Playlist cycle detected", "url", target, "from", e.pageURL)
		return nil
	}

	nested, err := e.processor.process(ctx, target, e.opts, e.ancestors)
	if err != nil {
		return err
	}
	e.feeds = append(e.feeds, nested...)
	return nil
}
