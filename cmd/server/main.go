package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgate/internal/api"
	"streamgate/internal/api/handler"
	"streamgate/internal/config"
	"streamgate/internal/downloader"
	"streamgate/internal/engine"
	"streamgate/internal/extractor"
	"streamgate/internal/history"
	"streamgate/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("streamgate %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamgate",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Request history is optional: no path, no database.
	var hist *history.Store
	if cfg.History.Path != "" {
		hist, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			logger.Error("failed to open history database", "error", err)
			os.Exit(1)
		}
		defer hist.Close()
		logger.Info("request history enabled", "path", cfg.History.Path)
	}

	// Prune old history entries on a timer when retention is set.
	pruneCtx, cancelPrune := context.WithCancel(context.Background())
	defer cancelPrune()
	if hist != nil && cfg.History.Retention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-pruneCtx.Done():
					return
				case <-ticker.C:
					if _, err := hist.Prune(pruneCtx, cfg.History.Retention); err != nil {
						logger.Warn("history prune failed", "error", err)
					}
				}
			}
		}()
	}

	// Initialize dependencies
	ext := extractor.New(cfg.Extractor)
	dl := downloader.New(cfg.Download)
	dl.SetLogger(logger)
	eng := engine.New(ext, dl, cfg.Transcoder)

	// Initialize services
	streamSvc := service.NewStreamService(eng, hist, logger)

	// Initialize handlers
	mediaHandler := handler.NewMediaHandler(streamSvc, logger)
	healthHandler := handler.NewHealthHandler(eng.VerifyTranscoder)

	// Setup router
	router := api.NewRouter(mediaHandler, healthHandler, cfg.Server.APIKey)

	// Setup HTTP server. WriteTimeout stays at the configured value,
	// zero by default: live streams run for the length of the media.
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
