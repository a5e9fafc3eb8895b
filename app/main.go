package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/raiplaysound-rss/app/api"
	"github.com/lysyi3m/raiplaysound-rss/app/catalog"
	"github.com/lysyi3m/raiplaysound-rss/app/cfg"
	"github.com/lysyi3m/raiplaysound-rss/app/database"
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
	"github.com/lysyi3m/raiplaysound-rss/app/tasks"
)

func main() {
	appCfg, err := loadConfig(os.Stderr, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: appCfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		slog.Error("Fatal error", "command", appCfg.Command, "error", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig parses args, reporting errors go-flags has not printed itself.
func loadConfig(stderr io.Writer, args []string) (*cfg.Cfg, error) {
	appCfg, err := cfg.LoadArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintf(stderr, "Failed to parse configuration: %v\n", err)
		}
		return nil, err
	}
	return appCfg, nil
}

func run(ctx context.Context, appCfg *cfg.Cfg) error {
	slog.Debug("File mode mask", "umask", fmt.Sprintf("%04o", uint32(feed.LoadUmask())))

	if err := os.MkdirAll(appCfg.Folder, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	publisher, err := feed.LoadPublisher(appCfg.PublisherConfig)
	if err != nil {
		return err
	}

	client := catalog.NewClient(&http.Client{Timeout: appCfg.Timeout}, appCfg.RatePerMinute, appCfg.UserAgent)
	processor := feed.NewProcessor(client, feed.NewBuilder(publisher), feed.NewGenerator(appCfg.Version), appCfg.Folder)

	var pageRepo *database.SQLPageRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		pageRepo = database.NewPageRepository(db)
		slog.Debug("History database opened", "path", appCfg.DBPath)
	}

	slog.Info("Starting", "command", appCfg.Command, "version", appCfg.Version, "folder", appCfg.Folder,
		"types", appCfg.Types.Strings(), "rate", appCfg.RatePerMinute)

	switch appCfg.Command {
	case cfg.CommandSingle:
		summary := newCrawler(processor, client, pageRepo).ProcessRoots(ctx, appCfg.URLs, appCfg.Options())
		logSummary(summary)
		return ctx.Err()

	case cfg.CommandAll:
		summary, err := newCrawler(processor, client, pageRepo).CrawlGenres(ctx, catalog.GenresURL, appCfg.Options())
		if err != nil {
			return err
		}
		logSummary(summary)
		return ctx.Err()

	case cfg.CommandServe:
		return serve(ctx, appCfg, processor, client, pageRepo)
	}

	return fmt.Errorf("unknown command %q", appCfg.Command)
}

// newCrawler keeps a nil repository out of the Recorder interface.
func newCrawler(processor *feed.Processor, client *catalog.Client, pageRepo *database.SQLPageRepository) *feed.Crawler {
	if pageRepo == nil {
		return feed.NewCrawler(processor, client, nil)
	}
	return feed.NewCrawler(processor, client, pageRepo)
}

func logSummary(summary feed.CrawlSummary) {
	slog.Info("Run completed",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"feeds", summary.Feeds)
}

func serve(ctx context.Context, appCfg *cfg.Cfg, processor *feed.Processor, client *catalog.Client,
	pageRepo *database.SQLPageRepository) error {
	if pageRepo == nil {
		return fmt.Errorf("serve requires a history database (--db-path)")
	}

	sourceCache := sources.NewCache(appCfg.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "count", sourceCache.GetSourceCount(), "dir", appCfg.SourcesDir)

	scheduler := tasks.NewScheduler(sourceCache, pageRepo, processor, client, tasks.SchedulerConfig{
		Interval:      time.Duration(appCfg.SchedulerInterval) * time.Second,
		WorkerCount:   appCfg.WorkerCount,
		DefaultTypes:  appCfg.Types,
		GenresURL:     catalog.GenresURL,
		CrawlInterval: time.Duration(appCfg.CrawlInterval) * time.Second,
		CrawlOptions:  appCfg.Options(),
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(sourceCache, pageRepo, scheduler, appCfg.Folder)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey, appCfg.Version),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "api", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
