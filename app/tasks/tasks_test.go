package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/wire-comb/app/delivery"
	"github.com/lysyi3m/wire-comb/app/profile"
)

type mockRunner struct {
	mu          sync.Mutex
	runs        []string
	shouldError bool
}

var _ BatchRunner = (*mockRunner)(nil)

func (m *mockRunner) Run(ctx context.Context, profileName, startPage string) (*delivery.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, profileName)
	if m.shouldError {
		return nil, fmt.Errorf("mock error")
	}
	return &delivery.Report{Profile: profileName}, nil
}

func (m *mockRunner) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func testProfiles(t *testing.T, feedURL, arcURL string) *profile.ProfileCache {
	t.Helper()

	base := profile.Profile{
		Name:    "default",
		OrgID:   "myorg",
		Website: "mysite",
		Section: "/news",
		Enabled: true,
		Feed: profile.Feed{
			Source:   profile.SourceAP,
			URL:      feedURL,
			MaxPages: 1,
		},
		Delivery: profile.Delivery{
			BaseURL:   arcURL,
			StoryRate: 600,
			PhotoRate: 600,
		},
	}

	profiles := profile.NewProfileCache(filepath.Join(t.TempDir(), "missing"), base)
	if err := profiles.Run(); err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}
	return profiles
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeIngest, "default")

	if task.Type != TaskTypeIngest {
		t.Errorf("Expected type ingest, got %s", task.Type)
	}
	if task.ProfileName != "default" {
		t.Errorf("Expected profile 'default', got '%s'", task.ProfileName)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected task to be retryable after %d retries", i)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected task to stop retrying after max retries")
	}
}

func TestIngestTaskExecute(t *testing.T) {
	runner := &mockRunner{}
	task := NewIngestTask("default", runner)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if runner.count() != 1 || runner.runs[0] != "default" {
		t.Errorf("Expected one run for 'default', got %v", runner.runs)
	}

	runner.shouldError = true
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error from failing runner")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if runner.count() != 2 {
		t.Errorf("Expected cancelled task not to run, got %d runs", runner.count())
	}
}

func TestNewScheduler(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	scheduler := NewScheduler(profiles, &mockRunner{}, time.Second)

	if scheduler == nil {
		t.Fatal("Expected scheduler to be created")
	}
	if scheduler.interval != time.Second {
		t.Errorf("Expected interval 1s, got %v", scheduler.interval)
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	runner := &mockRunner{}

	scheduler := NewScheduler(profiles, runner, 100*time.Millisecond)
	scheduler.Start()

	time.Sleep(250 * time.Millisecond)

	scheduler.Stop()

	if runner.count() == 0 {
		t.Error("Expected at least one ingestion run")
	}
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	scheduler := NewScheduler(profiles, &mockRunner{}, time.Hour)
	scheduler.cancel()

	if err := scheduler.EnqueueTask(NewIngestTask("default", &mockRunner{})); err == nil {
		t.Error("Expected error when enqueueing on a stopped scheduler")
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	runner := &mockRunner{shouldError: true}

	scheduler := NewScheduler(profiles, runner, time.Hour)
	task := NewIngestTask("default", runner)

	scheduler.executeTask(task)

	if task.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1, got %d", task.GetRetryCount())
	}

	scheduler.cancel()
	scheduler.wg.Wait()
}

type deadlineRunner struct {
	hasDeadline bool
}

func (d *deadlineRunner) Run(ctx context.Context, profileName, startPage string) (*delivery.Report, error) {
	_, d.hasDeadline = ctx.Deadline()
	return &delivery.Report{Profile: profileName}, nil
}

func TestSchedulerRunsWithoutDeadline(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	runner := &deadlineRunner{}

	scheduler := NewScheduler(profiles, runner, time.Hour)
	scheduler.executeTask(NewIngestTask("default", runner))

	if runner.hasDeadline {
		t.Error("Expected ingestion to run without a deadline")
	}

	scheduler.cancel()
	scheduler.wg.Wait()
}

func TestRunnerUnknownProfile(t *testing.T) {
	profiles := testProfiles(t, "http://feed.invalid", "http://arc.invalid")
	runner := NewRunner(profiles, http.DefaultClient, filepath.Join(t.TempDir(), "inventory.db"), "test-agent")

	if _, err := runner.Run(context.Background(), "missing", ""); err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestRunnerDeliversPage(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"params": {"seq": "1"}, "data": {"next_page": "", "items": [
			{"item": {"type": "picture", "altids": {"itemid": "photo-1"}, "uri": "https://wire.example.com/content/photo-1",
			"headline": "Photo", "firstcreated": "2024-03-01T10:00:00Z", "versioncreated": "2024-03-01T10:00:00Z",
			"renditions": {"main": {"href": "https://wire.example.com/photo-1.jpg", "originalfilename": "photo-1.jpg"}}}}
		]}}`)
	}))
	defer feed.Close()

	var mu sync.Mutex
	var requests []string
	arcServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
	}))
	defer arcServer.Close()

	profiles := testProfiles(t, feed.URL, arcServer.URL)
	runner := NewRunner(profiles, http.DefaultClient, filepath.Join(t.TempDir(), "inventory.db"), "test-agent")

	report, err := runner.Run(context.Background(), "default", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Attempted != 1 || report.Delivered != 1 {
		t.Errorf("Expected 1 attempted and delivered, got %d and %d", report.Attempted, report.Delivered)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(requests) != 1 || !strings.HasPrefix(requests[0], "POST /photo/api/v2/photos/") {
		t.Errorf("Expected one photo create, got %v", requests)
	}

	// Same content again is already in the inventory.
	report, err = runner.Run(context.Background(), "default", "")
	if err != nil {
		t.Fatalf("Expected no error on second run, got %v", err)
	}
	if report.AlreadyDelivered != 1 {
		t.Errorf("Expected 1 already delivered, got %d", report.AlreadyDelivered)
	}
	if len(requests) != 1 {
		t.Errorf("Expected no further requests, got %v", requests)
	}
}
