package tasks

import (
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background conversions.
// Example usage:
//
//	scheduler := NewScheduler(sourceCache, pageRepo, processor, genres, config)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueSource(source)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueSource(source *sources.Source) (TaskInterface, error)
}
