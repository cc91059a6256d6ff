package ports

import (
	"context"
	"io"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

// UploadIngestor accepts a document, stores it and enqueues analysis.
type UploadIngestor interface {
	Ingest(ctx context.Context, filename string, size int64, r io.Reader) (domain.Upload, error)
}

// AnalysisRunner executes the full analysis pipeline for an upload.
type AnalysisRunner interface {
	AnalyzeUpload(ctx context.Context, uploadID string) (domain.AnalysisResult, error)
}

// AnalysisReader exposes stored analysis results.
type AnalysisReader interface {
	GetAnalysis(ctx context.Context, id string) (domain.AnalysisResult, error)
}

// PlanAnalyzer matches a quality plan document against a stored analysis.
type PlanAnalyzer interface {
	MatchPlan(ctx context.Context, analysisID, filename string, size int64, r io.Reader) (domain.QualityPlanCoverage, error)
	GetPlan(ctx context.Context, analysisID string) (domain.QualityPlanCoverage, error)
}

// TextClassifier classifies ad-hoc requirement texts without persistence.
type TextClassifier interface {
	ClassifyTexts(ctx context.Context, texts []string) ([]domain.ClassifiedRequirement, error)
}
