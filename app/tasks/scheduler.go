package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/raiplaysound-rss/app/database"
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type SchedulerConfig struct {
	Interval      time.Duration
	WorkerCount   int
	DefaultTypes  feed.PageTypeSet // Used by sources without their own types
	GenresURL     string
	CrawlInterval time.Duration // Zero disables the genre crawl
	CrawlOptions  feed.Options
}

type Scheduler struct {
	sourceCache *sources.Cache
	pageRepo    database.PageRepository
	processor   *feed.Processor
	crawler     *feed.Crawler
	genres      feed.GenreSource
	config      SchedulerConfig
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu        sync.Mutex
	pending   map[string]struct{} // Sources and crawls queued or running
	lastCrawl time.Time
}

func NewScheduler(sourceCache *sources.Cache, pageRepo database.PageRepository, processor *feed.Processor,
	genres feed.GenreSource, config SchedulerConfig) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}

	return &Scheduler{
		sourceCache: sourceCache,
		pageRepo:    pageRepo,
		processor:   processor,
		crawler:     feed.NewCrawler(processor, genres, pageRepo),
		genres:      genres,
		config:      config,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		pending:     make(map[string]struct{}),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueSource queues a conversion of source unless one is already queued
// or running.
func (s *Scheduler) EnqueueSource(source *sources.Source) (TaskInterface, error) {
	key := pendingKey(TaskTypeProcessPage, source.Name)
	if !s.markPending(key) {
		return nil, fmt.Errorf("source '%s' is already queued", source.Name)
	}

	task := NewProcessPageTask(source, s.crawler, s.config.DefaultTypes)
	if err := s.EnqueueTask(task); err != nil {
		s.clearPending(key)
		return nil, err
	}
	return task, nil
}

func (s *Scheduler) enqueueTasks() {
	enabled := s.sourceCache.GetEnabledSources()
	if len(enabled) == 0 {
		slog.Debug("No enabled sources found")
	} else {
		slog.Debug("Processing enabled sources for task scheduling", "count", len(enabled))
	}

	now := time.Now().UTC()
	for _, source := range enabled {
		if !s.isDue(source, now) {
			continue
		}
		if _, err := s.EnqueueSource(source); err != nil {
			slog.Debug("Source not enqueued", "source", source.Name, "reason", err)
		}
	}

	s.enqueueCrawl(now)
}

func (s *Scheduler) isDue(source *sources.Source, now time.Time) bool {
	page, err := s.pageRepo.GetPage(feed.NameFromURL(source.URL))
	if err != nil {
		slog.Warn("Failed to get page from database, skipping", "source", source.Name, "error", err)
		return false
	}
	if page == nil {
		return true
	}

	next := page.LastProcessedAt.Add(source.Settings.GetRefreshInterval())
	if next.After(now) {
		slog.Debug("Source not due for refresh yet", "source", source.Name, "next_fetch_at", next)
		return false
	}
	return true
}

func (s *Scheduler) enqueueCrawl(now time.Time) {
	if s.config.CrawlInterval <= 0 || s.genres == nil {
		return
	}

	s.mu.Lock()
	due := s.lastCrawl.IsZero() || !s.lastCrawl.Add(s.config.CrawlInterval).After(now)
	s.mu.Unlock()
	if !due {
		return
	}

	key := pendingKey(TaskTypeCrawlGenres, crawlTaskName)
	if !s.markPending(key) {
		return
	}

	task := NewCrawlGenresTask(s.processor, s.genres, s.pageRepo, s.config.GenresURL, s.config.CrawlOptions)
	if err := s.EnqueueTask(task); err != nil {
		s.clearPending(key)
		slog.Warn("Failed to enqueue CrawlGenresTask", "error", err)
		return
	}

	s.mu.Lock()
	s.lastCrawl = now
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, task.GetType().Timeout())
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.clearPending(pendingKey(task.GetType(), task.GetSourceName()))
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.clearPending(pendingKey(task.GetType(), task.GetSourceName()))
		return
	}

	task.IncrementRetryCount()
	retryDelay := task.GetType().RetryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		case <-time.After(retryDelay):
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			s.clearPending(pendingKey(task.GetType(), task.GetSourceName()))
		}
	}()
}

func (s *Scheduler) markPending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[key]; ok {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *Scheduler) clearPending(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}

func pendingKey(taskType TaskType, name string) string {
	return string(taskType) + ":" + name
}
