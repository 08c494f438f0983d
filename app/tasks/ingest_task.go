package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type IngestTask struct {
	Task
	runner BatchRunner
}

func NewIngestTask(profileName string, runner BatchRunner) *IngestTask {
	return &IngestTask{
		Task:   NewTask(TaskTypeIngest, profileName),
		runner: runner,
	}
}

// Execute returns an error only when the batch could not run; failed items
// are reported in the logs.
func (t *IngestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	report, err := t.runner.Run(ctx, t.ProfileName, "")
	if err != nil {
		return fmt.Errorf("failed to run ingestion: %w", err)
	}

	slog.Debug("Ingest task completed",
		"profile", t.ProfileName,
		"attempted", report.Attempted,
		"delivered", report.Delivered)

	return nil
}
