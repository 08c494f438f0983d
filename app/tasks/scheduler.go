package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/wire-comb/app/profile"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler feeds ingest tasks to a single worker, so batches never overlap.
type Scheduler struct {
	profiles  *profile.ProfileCache
	runner    BatchRunner
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(profiles *profile.ProfileCache, runner BatchRunner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		profiles:  profiles,
		runner:    runner,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
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
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	profiles := s.profiles.Enabled()
	if len(profiles) == 0 {
		slog.Debug("No enabled profiles found")
		return
	}

	slog.Debug("Scheduling ingestion for enabled profiles", "count", len(profiles))

	for name := range profiles {
		if err := s.EnqueueTask(NewIngestTask(name, s.runner)); err != nil {
			slog.Warn("Failed to enqueue IngestTask", "profile", name, "error", err)
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	// No deadline here: an ingestion batch runs until its item list is done.
	started := time.Now()
	err := task.Execute(s.ctx)

	slog.Debug("Task finished", "type", string(task.GetType()), "id", task.GetID(), "profile", task.GetProfileName(), "duration", time.Since(started))

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "profile", task.GetProfileName(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "profile", task.GetProfileName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
