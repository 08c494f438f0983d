package tasks

import (
	"context"

	"github.com/lysyi3m/wire-comb/app/delivery"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
//
//	scheduler := NewScheduler(profiles, runner, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// BatchRunner runs one ingestion batch for a profile.
type BatchRunner interface {
	Run(ctx context.Context, profileName, startPage string) (*delivery.Report, error)
}
