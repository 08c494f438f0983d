package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/wire-comb/app/api"
	"github.com/lysyi3m/wire-comb/app/cfg"
	"github.com/lysyi3m/wire-comb/app/database"
	"github.com/lysyi3m/wire-comb/app/profile"
	"github.com/lysyi3m/wire-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Wire Comb", "version", appCfg.Version)

	// Apply migrations once up front so a broken inventory fails fast.
	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open inventory", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	if err := db.Close(); err != nil {
		slog.Error("Failed to close inventory", "error", err)
		os.Exit(1)
	}

	profiles := profile.NewProfileCache(appCfg.ProfilesDir, profile.FromConfig(appCfg))
	if err := profiles.Run(); err != nil {
		slog.Error("Failed to load profiles", "dir", appCfg.ProfilesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Profiles loaded", "total", profiles.Count(), "enabled", len(profiles.Enabled()))

	httpClient := &http.Client{Timeout: appCfg.HTTPTimeout}
	runner := tasks.NewRunner(profiles, httpClient, appCfg.DBPath, appCfg.UserAgent)

	if appCfg.SchedulerInterval > 0 {
		scheduler := tasks.NewScheduler(profiles, runner, time.Duration(appCfg.SchedulerInterval)*time.Second)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("Scheduler started", "interval", time.Duration(appCfg.SchedulerInterval)*time.Second)
	} else {
		slog.Info("Scheduler disabled, runs are triggered through the API only")
	}

	handler := api.NewHandler(profiles, runner, api.SQLiteInventory(appCfg.DBPath))
	server := api.NewServer(handler, appCfg.APIAccessKey)

	// Runs are synchronous, so the write timeout is generous.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Wire Comb shutdown complete")
}
