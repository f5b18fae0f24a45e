package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prasetyowira/notulis/adapters/azure"
	"github.com/prasetyowira/notulis/adapters/speech"
	"github.com/prasetyowira/notulis/adapters/stt"
	"github.com/prasetyowira/notulis/domain/repositories"
	"github.com/prasetyowira/notulis/internal/api"
	"github.com/prasetyowira/notulis/internal/config"
	"github.com/prasetyowira/notulis/internal/metrics"
	"github.com/prasetyowira/notulis/internal/ratelimit"
	"github.com/prasetyowira/notulis/internal/websocket"
	"github.com/prasetyowira/notulis/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Metrics registry
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize speech service adapters by provider
	transcriber, directory := buildSpeechService(cfg, logger)

	// Initialize usecase services
	speakerRegistry := usecase.NewSpeakerRegistry(directory, cfg.UpstreamTimeout, logger, m)
	transcriptLog := usecase.NewTranscriptLog()
	recognition := usecase.NewRecognitionService(
		transcriber, speakerRegistry, transcriptLog, cfg.UpstreamTimeout, logger, m)

	// Live transcript feed
	hub := websocket.NewHub(logger)
	go hub.Run()
	recognition.SetNotifier(hub)

	// Rate limiter guarding the audio processing path
	limiter := ratelimit.New(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)

	// Initialize API routes
	handler := api.NewHandler(recognition, speakerRegistry, hub, limiter, m, logger)
	handler.InitRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("provider", cfg.Provider),
		zap.Int("rateLimitMaxRequests", cfg.RateLimitMaxRequests),
		zap.Duration("rateLimitWindow", cfg.RateLimitWindow))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildSpeechService picks the transcriber and speaker directory for the
// configured provider. The google provider transcribes only; identification
// falls back to the Azure directory when a key is configured, otherwise to
// the mock directory so the pipeline still runs end to end.
func buildSpeechService(cfg *config.Config, logger *zap.Logger) (repositories.Transcriber, repositories.SpeakerDirectory) {
	switch cfg.Provider {
	case config.ProviderAzure:
		client := azure.NewClient(
			cfg.AzureSpeechKey, cfg.AzureSpeechRegion, cfg.Language,
			cfg.UpstreamTimeout, logger)
		return client, client

	case config.ProviderGoogle:
		transcriber := &stt.GoogleSpeechToText{Language: cfg.Language}
		if cfg.AzureSpeechKey != "" {
			directory := azure.NewClient(
				cfg.AzureSpeechKey, cfg.AzureSpeechRegion, cfg.Language,
				cfg.UpstreamTimeout, logger)
			return transcriber, directory
		}
		logger.Warn("No Azure key configured, speaker identification uses the mock directory")
		return transcriber, speech.NewMockSpeechService(logger)

	default:
		mock := speech.NewMockSpeechService(logger)
		return mock, mock
	}
}
