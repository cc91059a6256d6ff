package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/core/ports"
)

// maxAdhocTexts bounds one ad-hoc classification request.
const maxAdhocTexts = 200

// ClassifyTextsUseCase classifies caller-supplied requirement texts
// without touching storage.
type ClassifyTextsUseCase struct {
	classifier ports.RequirementClassifier
}

func NewClassifyTextsUseCase(classifier ports.RequirementClassifier) *ClassifyTextsUseCase {
	return &ClassifyTextsUseCase{classifier: classifier}
}

func (uc *ClassifyTextsUseCase) ClassifyTexts(_ context.Context, texts []string) ([]domain.ClassifiedRequirement, error) {
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "classify texts", errors.New("no texts supplied"))
	}
	if len(texts) > maxAdhocTexts {
		return nil, domain.WrapError(domain.ErrValidation, "classify texts",
			fmt.Errorf("%d texts exceed the limit of %d per request", len(texts), maxAdhocTexts))
	}

	classified, err := uc.classifier.ClassifyBatch(texts)
	if err != nil {
		return nil, fmt.Errorf("classify texts: %w", err)
	}
	for i := range classified {
		classified[i].SourceIndex = i
	}
	return classified, nil
}
