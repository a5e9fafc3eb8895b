package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
)

type ProcessPageTask struct {
	Task
	Source       *sources.Source
	crawler      *feed.Crawler
	defaultTypes feed.PageTypeSet
}

func NewProcessPageTask(source *sources.Source, crawler *feed.Crawler, defaultTypes feed.PageTypeSet) *ProcessPageTask {
	return &ProcessPageTask{
		Task:         NewTask(TaskTypeProcessPage, source.Name),
		Source:       source,
		crawler:      crawler,
		defaultTypes: defaultTypes,
	}
}

func (t *ProcessPageTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Source.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	feeds, err := t.crawler.ProcessRoot(ctx, t.Source.URL, t.Source.Options(t.defaultTypes))
	if err != nil {
		return fmt.Errorf("failed to process page: %w", err)
	}

	items := 0
	for _, f := range feeds {
		items += len(f.Items)
	}

	slog.Info("Task completed",
		"type", "ProcessedPage",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"feeds", len(feeds),
		"items", items)

	return nil
}
