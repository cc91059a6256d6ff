package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/qualitymap/qualitymap/internal/adapters/http"
	"github.com/qualitymap/qualitymap/internal/bootstrap"
	"github.com/qualitymap/qualitymap/internal/config"
	"github.com/qualitymap/qualitymap/internal/observability/logging"
	"github.com/qualitymap/qualitymap/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("qualitymap-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("qualitymap-api")
	router := httpadapter.NewRouter(
		app.Ingestor,
		app.SyncIngestor,
		app.Runner,
		app.Reader,
		app.Planner,
		app.Classifier,
		app.Exporter,
		app.Uploads,
		serverMetrics,
		httpadapter.Options{
			ServiceName:        "qualitymap-api",
			MaxUploadBytes:     cfg.MaxUploadBytes,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
			MaxInFlight:        64,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort, "async_analysis", cfg.AsyncAnalysis)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
