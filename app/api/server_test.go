package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/wire-comb/app/database"
	"github.com/lysyi3m/wire-comb/app/delivery"
	"github.com/lysyi3m/wire-comb/app/profile"
)

type mockRunner struct {
	profile   string
	startPage string
	err       error
}

func (m *mockRunner) Run(ctx context.Context, profileName, startPage string) (*delivery.Report, error) {
	m.profile = profileName
	m.startPage = startPage
	if m.err != nil {
		return nil, m.err
	}
	return &delivery.Report{Profile: profileName, Attempted: 9, Delivered: 7, AlreadyDelivered: 2}, nil
}

func setupTestServer(t *testing.T, apiKey string) (http.Handler, *mockRunner, string) {
	t.Helper()

	base := profile.Profile{
		Name:    "default",
		OrgID:   "myorg",
		Website: "mysite",
		Section: "/news",
		Enabled: true,
		Feed:    profile.Feed{URL: "http://feed.invalid"},
	}
	profiles := profile.NewProfileCache(filepath.Join(t.TempDir(), "missing"), base)
	if err := profiles.Run(); err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "inventory.db")
	runner := &mockRunner{}
	handler := NewHandler(profiles, runner, SQLiteInventory(dbPath))

	return NewServer(handler, apiKey), runner, dbPath
}

func TestHealth(t *testing.T) {
	server, _, _ := setupTestServer(t, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
	if body["profiles"] != float64(1) {
		t.Errorf("Expected 1 profile, got %v", body["profiles"])
	}
	if body["inventory"] != float64(0) {
		t.Errorf("Expected empty inventory, got %v", body["inventory"])
	}
}

func TestRunProfile(t *testing.T) {
	server, runner, _ := setupTestServer(t, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/profiles/default/run?page=https://wire.example.com/feed?seq=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["items"] != float64(9) {
		t.Errorf("Expected items 9, got %v", body["items"])
	}
	if runner.profile != "default" {
		t.Errorf("Expected run for 'default', got '%s'", runner.profile)
	}
	if runner.startPage != "https://wire.example.com/feed?seq=5" {
		t.Errorf("Expected page override to be passed, got '%s'", runner.startPage)
	}
}

func TestRunProfileErrors(t *testing.T) {
	server, runner, _ := setupTestServer(t, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/profiles/missing/run", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown profile, got %d", w.Code)
	}

	runner.err = fmt.Errorf("failed to open inventory")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/profiles/default/run", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for failed run, got %d", w.Code)
	}
}

func TestGetInventory(t *testing.T) {
	server, _, dbPath := setupTestServer(t, "")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	err = database.NewInventoryRepository(db).Upsert(database.InventoryRecord{
		SourceID:    "story-1",
		ContentID:   "XXNLFCAGCFKCPD5ZFGQTXFGWM4",
		URL:         "https://wire.example.com/content/story-1",
		Type:        "story",
		Fingerprint: "abc",
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	db.Close()

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory/story-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "XXNLFCAGCFKCPD5ZFGQTXFGWM4") {
		t.Errorf("Expected content id in response, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory/story-2", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	server, _, _ := setupTestServer(t, "secret")

	tests := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{"no key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header key", "X-API-Key", "secret", http.StatusOK},
		{"bearer key", "Authorization", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/profiles/default/run", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected health to stay public, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t, "")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected prometheus exposition output")
	}
}
