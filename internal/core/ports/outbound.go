package ports

import (
	"context"
	"io"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

// UploadRepository persists upload metadata and status transitions.
type UploadRepository interface {
	CreateUpload(ctx context.Context, up domain.Upload) error
	GetUpload(ctx context.Context, id string) (domain.Upload, error)
	UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, errMsg string) error
}

// AnalysisRepository stores analysis results and quality plan coverages.
// SaveAnalysis writes the result and its classified requirements in a
// single transaction.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, res domain.AnalysisResult) error
	GetAnalysis(ctx context.Context, id string) (domain.AnalysisResult, error)
	GetAnalysisByUpload(ctx context.Context, uploadID string) (domain.AnalysisResult, error)
	SaveQualityPlan(ctx context.Context, cov domain.QualityPlanCoverage) error
	GetQualityPlanByAnalysis(ctx context.Context, analysisID string) (domain.QualityPlanCoverage, error)
}

// ObjectStorage keeps raw uploaded documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries analysis requests from the API to the worker.
type MessageQueue interface {
	PublishAnalysisRequested(ctx context.Context, uploadID string) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(ctx context.Context, uploadID string) error) error
	Close()
}

// TextExtractor turns a raw document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, kind domain.MimeKind) (domain.ExtractedText, error)
}

// Segmenter splits extracted text into requirement candidates.
type Segmenter interface {
	Segment(text string) ([]domain.RequirementCandidate, domain.ExtractionStats)
	// EvidenceSegments returns cleaned sentence-level segments without
	// the requirement keyword filter, for matching plan evidence.
	EvidenceSegments(text string) []string
}

// RequirementClassifier assigns a quality category to requirement text.
type RequirementClassifier interface {
	Classify(text string) (domain.ClassifiedRequirement, error)
	ClassifyBatch(texts []string) ([]domain.ClassifiedRequirement, error)
}

// DomainDetector infers the application domain of a document.
type DomainDetector interface {
	Detect(ctx context.Context, text string, counts map[domain.Category]int) (domain.DomainProfile, error)
}

// ReportExporter renders an analysis result into a downloadable report.
type ReportExporter interface {
	ExportAnalysis(res domain.AnalysisResult) ([]byte, error)
}
