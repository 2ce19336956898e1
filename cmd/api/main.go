package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopthelook/scout/internal/api/handlers"
	"github.com/shopthelook/scout/internal/api/middleware"
	"github.com/shopthelook/scout/internal/app"
	"github.com/shopthelook/scout/internal/config"
	"github.com/shopthelook/scout/internal/scouterrors"
)

const maxRequestBodyBytes = 64 << 10

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// The API surface is bearer-authenticated; refuse to start without a key.
	if cfg.APIKey == "" {
		slog.Error("Failed to start", "error", scouterrors.NewConfigurationError("API_KEY", ""))
		os.Exit(1)
	}

	// Wire the pipeline; this loads or builds the embedding index, the
	// dominant cost of startup.
	orchestrator, err := app.BuildOrchestrator(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	looksHandler := handlers.NewLooksHandler(orchestrator, cfg.TopK, cfg.MaxResults)
	healthHandler := handlers.NewHealthHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	r.Get("/health", healthHandler.Check)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey))
		r.Use(middleware.MaxBody(maxRequestBodyBytes))
		r.Post("/looks/search", looksHandler.SearchLooks)
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Pipeline runs chain several external calls; give writes room.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}
