package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/contre95/tonegarden/src/features/config"
	"github.com/contre95/tonegarden/src/features/enriching"
	"github.com/contre95/tonegarden/src/features/gardening"
	"github.com/contre95/tonegarden/src/features/health"
	"github.com/contre95/tonegarden/src/features/hosting"
	"github.com/contre95/tonegarden/src/features/library"
	"github.com/contre95/tonegarden/src/features/logging"
	"github.com/contre95/tonegarden/src/features/metrics"
	"github.com/contre95/tonegarden/src/features/organizing"
	"github.com/contre95/tonegarden/src/features/scanning"
	"github.com/contre95/tonegarden/src/infra/acoustid"
	"github.com/contre95/tonegarden/src/infra/artwork"
	"github.com/contre95/tonegarden/src/infra/coverart"
	"github.com/contre95/tonegarden/src/infra/database"
	"github.com/contre95/tonegarden/src/infra/files"
	"github.com/contre95/tonegarden/src/infra/fingerprint"
	"github.com/contre95/tonegarden/src/infra/musicbrainz"
	"github.com/contre95/tonegarden/src/infra/tag"
	"github.com/contre95/tonegarden/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the track index
	db, err := database.NewSqliteLibrary(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open track index: %v", err)
	}
	defer db.Close()

	// Infra adapters
	tagReader := tag.NewReader()
	tagWriter := tag.NewWriter()
	coverNormalizer := artwork.NewNormalizer(1200)
	fingerprinter := fingerprint.NewService()
	acoustidClient := acoustid.NewClient(cfgManager.Get().Enrichment.AcoustIDKey)
	musicbrainzClient := musicbrainz.NewClient()
	coverartClient := coverart.NewClient()
	mover := files.NewMover()

	// Feature services
	libraryService := library.NewService(db)
	healthService := health.NewService(db)
	enrichingService := enriching.NewService(fingerprinter, acoustidClient, musicbrainzClient, coverartClient, tagReader, tagWriter, coverNormalizer, cfgManager)
	scanningService := scanning.NewService(db, db, tagReader, cfgManager)
	organizingService := organizing.NewService(db, mover, cfgManager, organizing.DefaultUndoLogPath())
	gardenerService := gardening.NewService(db, enrichingService, healthService, cfgManager)

	// Background workers
	gardenerService.Start(ctx)

	metricsService := metrics.NewService(db, gardenerService)
	metricsService.Run(ctx)

	// Watch the library for live changes
	fileEvents := make(chan watcher.FileEvent, 64)
	libraryWatcher, err := watcher.NewWatcher(fileEvents)
	if err != nil {
		log.Fatalf("failed to create watcher: %v", err)
	}
	if err := libraryWatcher.Start(ctx, cfgManager.Get().LibraryPath); err != nil {
		log.Fatalf("failed to watch library: %v", err)
	}
	defer libraryWatcher.Stop()
	go scanningService.HandleFileEvents(ctx, fileEvents)

	// Reconcile the index against the filesystem on startup
	if _, err := scanningService.StartScan(cfgManager.Get().LibraryPath); err != nil {
		slog.Warn("startup scan not started", "error", err)
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, hosting.Services{
		Library:    libraryService,
		Scanning:   scanningService,
		Enriching:  enrichingService,
		Gardening:  gardenerService,
		Organizing: organizingService,
		Health:     healthService,
	})
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down...")

	gardenerService.Stop()
	cancel()

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
