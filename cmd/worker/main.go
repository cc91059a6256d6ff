package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qualitymap/qualitymap/internal/bootstrap"
	"github.com/qualitymap/qualitymap/internal/config"
	"github.com/qualitymap/qualitymap/internal/observability/logging"
	"github.com/qualitymap/qualitymap/internal/observability/metrics"
)

const serviceName = "qualitymap-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalysisRequested(ctx, func(handlerCtx context.Context, uploadID string) error {
		analyzeCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartAnalysis()
		start := time.Now()

		if up, err := app.Uploads.GetUpload(analyzeCtx, uploadID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(up.CreatedAt))
		}

		_, err := app.Runner.AnalyzeUpload(analyzeCtx, uploadID)
		workerMetrics.FinishAnalysis(serviceName, time.Since(start), err)
		if err != nil {
			logger.Error("analysis failed", "upload_id", uploadID, "error", err)
		}
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
