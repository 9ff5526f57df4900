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

	"github.com/lysyi3m/sheet-dir/app/api"
	"github.com/lysyi3m/sheet-dir/app/cfg"
	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/fetch"
	"github.com/lysyi3m/sheet-dir/app/source"
	"github.com/lysyi3m/sheet-dir/app/state"
	"github.com/lysyi3m/sheet-dir/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Sheet Dir server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	fetcher := fetch.NewFetcher(httpClient, appCfg.UserAgent)

	snapshotRepo, err := database.NewSnapshotRepository(db)
	if err != nil {
		slog.Error("Failed to create snapshot repository", "error", err)
		os.Exit(1)
	}
	defer snapshotRepo.Close()

	deps := &tasks.Dependencies{
		Loader:       state.NewLoader(state.NewStore()),
		Fetcher:      fetcher,
		Excerpts:     fetch.NewExcerptExtractor(fetcher, 15*time.Second),
		SourceRepo:   database.NewSourceRepository(db),
		SnapshotRepo: snapshotRepo,
		ExcerptRepo:  database.NewExcerptRepository(db),
	}

	scheduler := tasks.NewScheduler(configCache, deps,
		time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	handler := api.NewHandler(configCache, deps.SourceRepo, scheduler, deps, appCfg.BaseUrl, api.ProxyOptions{
		MaxAge:               appCfg.ProxyMaxAge,
		StaleWhileRevalidate: appCfg.ProxyStaleWhileRevalidate,
		AllowedHosts:         appCfg.ProxyAllowedHosts,
		Timeout:              time.Duration(appCfg.ProxyTimeout) * time.Second,
	})
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", appCfg.BaseUrl)
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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	scheduler.Stop()
	slog.Info("Background scheduler stopped")

	slog.Info("Sheet Dir server shutdown complete")
}
