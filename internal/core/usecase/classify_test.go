package usecase

import (
	"context"
	"testing"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func TestClassifyTexts(t *testing.T) {
	uc := NewClassifyTextsUseCase(&classifierFake{})

	out, err := uc.ClassifyTexts(context.Background(), []string{
		"The system shall encrypt traffic.",
		"The system shall render the dashboard.",
	})
	if err != nil {
		t.Fatalf("classify texts: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("results = %d, want 2", len(out))
	}
	if out[0].Category != domain.CategorySecurity {
		t.Errorf("first category = %s, want Security", out[0].Category)
	}
	for i, req := range out {
		if req.SourceIndex != i {
			t.Errorf("result %d has SourceIndex %d", i, req.SourceIndex)
		}
	}
}

func TestClassifyTextsRejectsEmptyList(t *testing.T) {
	uc := NewClassifyTextsUseCase(&classifierFake{})
	if _, err := uc.ClassifyTexts(context.Background(), nil); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClassifyTextsRejectsOversizedBatch(t *testing.T) {
	uc := NewClassifyTextsUseCase(&classifierFake{})
	texts := make([]string, maxAdhocTexts+1)
	for i := range texts {
		texts[i] = "The system shall do something."
	}
	if _, err := uc.ClassifyTexts(context.Background(), texts); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
