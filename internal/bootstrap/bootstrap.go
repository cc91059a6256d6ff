package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qualitymap/qualitymap/internal/config"
	"github.com/qualitymap/qualitymap/internal/core/ports"
	"github.com/qualitymap/qualitymap/internal/core/usecase"
	"github.com/qualitymap/qualitymap/internal/infrastructure/classifier/linear"
	"github.com/qualitymap/qualitymap/internal/infrastructure/domaindetect"
	"github.com/qualitymap/qualitymap/internal/infrastructure/extractor"
	"github.com/qualitymap/qualitymap/internal/infrastructure/queue/nats"
	"github.com/qualitymap/qualitymap/internal/infrastructure/report"
	"github.com/qualitymap/qualitymap/internal/infrastructure/repository/postgres"
	"github.com/qualitymap/qualitymap/internal/infrastructure/resilience"
	"github.com/qualitymap/qualitymap/internal/infrastructure/segmenting"
	"github.com/qualitymap/qualitymap/internal/infrastructure/storage/localfs"
	"github.com/qualitymap/qualitymap/internal/quality"
)

type App struct {
	Config config.Config
	Policy quality.Policy

	Queue    ports.MessageQueue
	Uploads  ports.UploadRepository
	Analyses ports.AnalysisRepository

	Ingestor     ports.UploadIngestor
	SyncIngestor ports.UploadIngestor
	Runner       ports.AnalysisRunner
	Reader       ports.AnalysisReader
	Planner      ports.PlanAnalyzer
	Classifier   ports.TextClassifier
	Exporter     ports.ReportExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	policy, err := quality.Load(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load quality policy: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	uploads := postgres.NewUploadRepository(db)
	if err := uploads.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	analyses := postgres.NewAnalysisRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: exec,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	// The classifier artifacts are mandatory. Refusing to start beats
	// serving requests that can only fail.
	classifier, err := linear.New(cfg.VectorizerPath, cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier artifacts: %w", err)
	}

	segmenter := segmenting.New(policy)
	docExtractor := extractor.NewComposite()

	var detectClient *domaindetect.Client
	if cfg.DomainDetectURL != "" {
		detectClient = domaindetect.NewClient(
			cfg.DomainDetectURL,
			cfg.DomainDetectModel,
			time.Duration(cfg.DomainDetectTimeout)*time.Second,
		)
	}
	detector := domaindetect.NewDetector(detectClient, exec, policy, logger)

	scorer := usecase.NewScorer(policy)
	matcher := usecase.NewCoverageMatcher(policy, segmenter)

	var publishQueue ports.MessageQueue
	if cfg.AsyncAnalysis {
		publishQueue = queue
	}
	ingestor := usecase.NewIngestUploadUseCase(uploads, storage, publishQueue, cfg.MaxUploadBytes)
	syncIngestor := usecase.NewIngestUploadUseCase(uploads, storage, nil, cfg.MaxUploadBytes)
	runner := usecase.NewAnalyzeUploadUseCase(uploads, analyses, storage, docExtractor, segmenter, classifier, detector, scorer)
	planner := usecase.NewMatchQualityPlanUseCase(analyses, docExtractor, matcher, cfg.MaxUploadBytes)
	adhoc := usecase.NewClassifyTextsUseCase(classifier)

	return &App{
		Config: cfg,
		Policy: policy,

		Queue:    queue,
		Uploads:  uploads,
		Analyses: analyses,

		Ingestor:     ingestor,
		SyncIngestor: syncIngestor,
		Runner:       runner,
		Reader:       analyses,
		Planner:      planner,
		Classifier:   adhoc,
		Exporter:     report.NewExcelExporter(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
