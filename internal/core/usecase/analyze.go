package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/core/ports"
)

// AnalyzeUploadUseCase runs the full analysis pipeline for one stored
// upload: extract, segment, classify, detect domain, score, persist.
// The pipeline is a strict sequential chain with no shared per-request
// state, so concurrent analyses of different uploads are independent.
type AnalyzeUploadUseCase struct {
	uploads    ports.UploadRepository
	analyses   ports.AnalysisRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	segmenter  ports.Segmenter
	classifier ports.RequirementClassifier
	detector   ports.DomainDetector
	scorer     *Scorer
}

func NewAnalyzeUploadUseCase(
	uploads ports.UploadRepository,
	analyses ports.AnalysisRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	segmenter ports.Segmenter,
	classifier ports.RequirementClassifier,
	detector ports.DomainDetector,
	scorer *Scorer,
) *AnalyzeUploadUseCase {
	return &AnalyzeUploadUseCase{
		uploads:    uploads,
		analyses:   analyses,
		storage:    storage,
		extractor:  extractor,
		segmenter:  segmenter,
		classifier: classifier,
		detector:   detector,
		scorer:     scorer,
	}
}

func (uc *AnalyzeUploadUseCase) AnalyzeUpload(ctx context.Context, uploadID string) (domain.AnalysisResult, error) {
	if err := uc.markStatus(ctx, uploadID, domain.UploadStatusProcessing, ""); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.runPipeline(ctx, uploadID)
	if err != nil {
		if failErr := uc.markFailed(ctx, uploadID, err); failErr != nil {
			return domain.AnalysisResult{}, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return domain.AnalysisResult{}, err
	}

	if err := uc.markStatus(ctx, uploadID, domain.UploadStatusCompleted, ""); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("set status=completed: %w", err)
	}
	return result, nil
}

func (uc *AnalyzeUploadUseCase) runPipeline(ctx context.Context, uploadID string) (domain.AnalysisResult, error) {
	up, err := uc.uploads.GetUpload(ctx, uploadID)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("fetch upload by id: %w", err)
	}

	extracted, err := uc.extract(ctx, up)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	classified, stats, err := uc.segmentAndClassify(extracted.Text)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	profile, err := uc.detectDomain(ctx, extracted.Text, classified)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	result := uc.scorer.Score(classified, profile)
	result.ID = uuid.NewString()
	result.UploadID = up.ID
	result.ExtractionStats = stats
	result.WordCount = extracted.WordCount
	result.PageCount = extracted.PageCount
	result.CreatedAt = time.Now().UTC()

	if err := uc.analyses.SaveAnalysis(ctx, result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("save analysis: %w", err)
	}
	return result, nil
}

func (uc *AnalyzeUploadUseCase) extract(ctx context.Context, up domain.Upload) (domain.ExtractedText, error) {
	reader, err := uc.storage.Open(ctx, up.StoragePath)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("open stored upload: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("read stored upload: %w", err)
	}

	extracted, err := uc.extractor.Extract(ctx, data, up.MimeKind)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("extract text: %w", err)
	}
	return extracted, nil
}

// segmentAndClassify carries segmentation metadata (keyword strength,
// source position) onto the classifier output so the stored rows keep
// their provenance.
func (uc *AnalyzeUploadUseCase) segmentAndClassify(text string) ([]domain.ClassifiedRequirement, domain.ExtractionStats, error) {
	candidates, stats := uc.segmenter.Segment(text)
	if len(candidates) == 0 {
		return nil, stats, domain.WrapError(domain.ErrNoRequirements, "segment upload",
			errors.New("segmentation produced zero requirement candidates"))
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	classified, err := uc.classifier.ClassifyBatch(texts)
	if err != nil {
		return nil, stats, fmt.Errorf("classify requirements: %w", err)
	}
	if len(classified) != len(candidates) {
		return nil, stats, fmt.Errorf("classifier returned %d results for %d candidates", len(classified), len(candidates))
	}

	for i := range classified {
		classified[i].KeywordStrength = candidates[i].KeywordStrength
		classified[i].SourceIndex = candidates[i].SourceIndex
	}
	return classified, stats, nil
}

func (uc *AnalyzeUploadUseCase) detectDomain(ctx context.Context, text string, classified []domain.ClassifiedRequirement) (domain.DomainProfile, error) {
	counts := make(map[domain.Category]int, len(domain.Categories()))
	for _, req := range classified {
		counts[req.Category]++
	}
	profile, err := uc.detector.Detect(ctx, text, counts)
	if err != nil {
		return domain.DomainProfile{}, fmt.Errorf("detect domain: %w", err)
	}
	return profile, nil
}

func (uc *AnalyzeUploadUseCase) markStatus(ctx context.Context, uploadID string, status domain.UploadStatus, errMessage string) error {
	return uc.uploads.UpdateUploadStatus(ctx, uploadID, status, errMessage)
}

func (uc *AnalyzeUploadUseCase) markFailed(ctx context.Context, uploadID string, pipelineErr error) error {
	if pipelineErr == nil {
		return nil
	}
	return uc.markStatus(ctx, uploadID, domain.UploadStatusFailed, pipelineErr.Error())
}
