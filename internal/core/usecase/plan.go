package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/core/ports"
)

// MatchQualityPlanUseCase matches an uploaded quality plan document
// against a stored analysis and persists the coverage result.
type MatchQualityPlanUseCase struct {
	analyses  ports.AnalysisRepository
	extractor ports.TextExtractor
	matcher   *CoverageMatcher
	maxBytes  int64
}

func NewMatchQualityPlanUseCase(
	analyses ports.AnalysisRepository,
	extractor ports.TextExtractor,
	matcher *CoverageMatcher,
	maxBytes int64,
) *MatchQualityPlanUseCase {
	return &MatchQualityPlanUseCase{
		analyses:  analyses,
		extractor: extractor,
		matcher:   matcher,
		maxBytes:  maxBytes,
	}
}

func (uc *MatchQualityPlanUseCase) MatchPlan(ctx context.Context, analysisID, filename string, size int64, r io.Reader) (domain.QualityPlanCoverage, error) {
	kind, ok := domain.MimeKindForFilename(filename)
	if !ok {
		return domain.QualityPlanCoverage{}, domain.WrapError(domain.ErrValidation, "match plan",
			fmt.Errorf("unsupported file type %q, expected .pdf or .docx", filepath.Ext(filename)))
	}
	if size <= 0 {
		return domain.QualityPlanCoverage{}, domain.WrapError(domain.ErrValidation, "match plan", errors.New("empty upload"))
	}
	if uc.maxBytes > 0 && size > uc.maxBytes {
		return domain.QualityPlanCoverage{}, domain.WrapError(domain.ErrValidation, "match plan",
			fmt.Errorf("upload of %d bytes exceeds limit of %d", size, uc.maxBytes))
	}

	analysis, err := uc.analyses.GetAnalysis(ctx, analysisID)
	if err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("fetch analysis by id: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("read plan upload: %w", err)
	}
	extracted, err := uc.extractor.Extract(ctx, data, kind)
	if err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("extract plan text: %w", err)
	}

	cov := uc.matcher.Match(analysis, extracted.Text)
	cov.ID = uuid.NewString()
	cov.WordCount = extracted.WordCount
	cov.PageCount = extracted.PageCount
	cov.CreatedAt = time.Now().UTC()

	if err := uc.analyses.SaveQualityPlan(ctx, cov); err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("save quality plan: %w", err)
	}
	return cov, nil
}

func (uc *MatchQualityPlanUseCase) GetPlan(ctx context.Context, analysisID string) (domain.QualityPlanCoverage, error) {
	cov, err := uc.analyses.GetQualityPlanByAnalysis(ctx, analysisID)
	if err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("fetch quality plan: %w", err)
	}
	return cov, nil
}
