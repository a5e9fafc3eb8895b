package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeProcessPage TaskType = "process_page"
	TaskTypeCrawlGenres TaskType = "crawl_genres"
)

const (
	DefaultMaxRetries = 3
	crawlMaxRetries   = 1

	pageTaskTimeout  = 30 * time.Minute
	crawlTaskTimeout = 6 * time.Hour

	pageRetryDelayCap = 30 * time.Second
	crawlRetryDelay   = 10 * time.Minute
)

// MaxRetries is the retry budget of the task type. A crawl revisits every
// program of the catalog, so it gets a single retry.
func (t TaskType) MaxRetries() int {
	if t == TaskTypeCrawlGenres {
		return crawlMaxRetries
	}
	return DefaultMaxRetries
}

// Timeout bounds one execution of the task type.
func (t TaskType) Timeout() time.Duration {
	if t == TaskTypeCrawlGenres {
		return crawlTaskTimeout
	}
	return pageTaskTimeout
}

// RetryDelay is the wait before the given retry (1-based). Page conversions
// back off exponentially up to a cap; crawls wait a fixed, longer time.
func (t TaskType) RetryDelay(retry int) time.Duration {
	if t == TaskTypeCrawlGenres {
		return crawlRetryDelay
	}
	if retry < 1 {
		retry = 1
	}
	if retry > 6 {
		return pageRetryDelayCap
	}
	return min(time.Duration(1<<uint(retry-1))*time.Second, pageRetryDelayCap)
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSourceName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	SourceName string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetSourceName() string {
	return t.SourceName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, sourceName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		SourceName: sourceName,
		RetryCount: 0,
		MaxRetries: taskType.MaxRetries(),
	}
}
