// Reloan - Personalized loan re-engagement pricing in 60 seconds.
// Copyright (c) 2025 openbank-labs
// Licensed under the Apache License 2.0

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

	"github.com/openbank-labs/reloan/internal/api"
	"github.com/openbank-labs/reloan/internal/bus"
	"github.com/openbank-labs/reloan/internal/cache"
	"github.com/openbank-labs/reloan/internal/domain"
	"github.com/openbank-labs/reloan/internal/pricing"
	"github.com/openbank-labs/reloan/internal/profile"
	"github.com/openbank-labs/reloan/internal/repository"
	"github.com/openbank-labs/reloan/internal/tools"
	"github.com/openbank-labs/reloan/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("RELOAN_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting reloan",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("RELOAN_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Seed customer profiles from CSV when requested
	if csvPath := os.Getenv("RELOAN_SEED_CSV"); csvPath != "" {
		count, err := profile.ImportCSV(ctx, repo, csvPath)
		if err != nil {
			slog.Error("failed to import customer CSV", "path", csvPath, "error", err)
			os.Exit(1)
		}
		slog.Info("customer profiles imported", "path", csvPath, "count", count)
	}

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Pricing Engine
	engine, err := pricing.NewEngine()
	if err != nil {
		slog.Error("failed to initialize pricing engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Load campaigns from database (no hardcoded defaults - configure via API)
	if err := loadCampaignsFromDatabase(ctx, repo, engine); err != nil {
		slog.Error("failed to load campaigns", "error", err)
		os.Exit(1)
	}
	slog.Info("pricing engine initialized", "campaigns_count", engine.CampaignCount())

	// Initialize profile service and the tool registry
	profiles := profile.NewService(repo, cacheImpl, cfg.Cache.ProfileTTL)
	registry := tools.NewRegistry(profiles, engine, repo, busImpl)
	slog.Info("tool registry initialized", "tools", registry.Names())

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("RELOAN_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, profiles, registry)

		if err := asyncWorker.Start(); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started")
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg, repo, cacheImpl, busImpl, engine, profiles, registry, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("reloan is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("reloan shutdown complete")
}

// loadCampaignsFromDatabase loads campaigns from the database into the engine.
// All campaigns must be configured via POST /campaigns API - no hardcoded defaults.
func loadCampaignsFromDatabase(ctx context.Context, repo domain.Repository, engine *pricing.Engine) error {
	dbCampaigns, err := repo.ListCampaigns(ctx)
	if err != nil {
		slog.Warn("failed to list campaigns from database", "error", err)
		return nil // Start with empty campaigns - they can be added via API
	}

	if len(dbCampaigns) > 0 {
		slog.Info("loading campaigns from database", "count", len(dbCampaigns))
		return engine.LoadCampaigns(dbCampaigns)
	}

	slog.Info("no campaigns in database - configure via POST /campaigns API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               💰 RELOAN                   ║")
	fmt.Println("  ║    Loan Re-engagement Pricing Engine      ║")
	fmt.Println("  ║     The right rate for every return.      ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /tools/{name}       - Invoke an agent tool")
	fmt.Println("    GET  /customers/{id}     - Get a customer profile")
	fmt.Println("    POST /pricing/evaluate   - Evaluate dynamic pricing")
	fmt.Println("    GET  /pricing/{id}       - Get a pricing snapshot")
	fmt.Println("    GET  /campaigns          - List all campaigns")
	fmt.Println("    POST /campaigns          - Create a new campaign")
	fmt.Println("    DELETE /campaigns/{id}   - Delete a campaign")
	fmt.Println("    POST /campaigns/reload   - Hot-reload campaigns")
	fmt.Println("    GET  /health             - Health check")
	fmt.Println()
}
