// Package linear classifies requirement text with a pre-trained TF-IDF
// vectorizer and linear model. The training happens offline; this
// package only loads the exported artifacts and runs inference, so the
// service carries no ML runtime.
package linear

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

// vectorizerArtifact mirrors the exported TF-IDF vectorizer state.
type vectorizerArtifact struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramMin    int            `json:"ngram_min"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
	StopWords   []string       `json:"stop_words"`
}

// modelArtifact mirrors the exported linear model: one weight row and
// one intercept per class, in the artifact's class order.
type modelArtifact struct {
	Classes      []string    `json:"classes"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

func loadVectorizerArtifact(path string) (vectorizerArtifact, error) {
	var art vectorizerArtifact
	raw, err := os.ReadFile(path)
	if err != nil {
		return art, domain.WrapError(domain.ErrClassification, "load vectorizer artifact", err)
	}
	if err := json.Unmarshal(raw, &art); err != nil {
		return art, domain.WrapError(domain.ErrClassification, "parse vectorizer artifact", err)
	}
	if err := art.validate(); err != nil {
		return art, domain.WrapError(domain.ErrClassification, "validate vectorizer artifact", err)
	}
	return art, nil
}

func (a vectorizerArtifact) validate() error {
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.IDF) {
			return fmt.Errorf("term %q maps to index %d outside idf table of size %d", term, idx, len(a.IDF))
		}
	}
	if len(a.IDF) < len(a.Vocabulary) {
		return fmt.Errorf("idf table smaller than vocabulary: %d < %d", len(a.IDF), len(a.Vocabulary))
	}
	if a.NgramMin < 1 || a.NgramMax < a.NgramMin {
		return fmt.Errorf("invalid ngram range [%d,%d]", a.NgramMin, a.NgramMax)
	}
	return nil
}

func loadModelArtifact(path string) (modelArtifact, error) {
	var art modelArtifact
	raw, err := os.ReadFile(path)
	if err != nil {
		return art, domain.WrapError(domain.ErrClassification, "load model artifact", err)
	}
	if err := json.Unmarshal(raw, &art); err != nil {
		return art, domain.WrapError(domain.ErrClassification, "parse model artifact", err)
	}
	return art, nil
}

func (a modelArtifact) validate(featureCount int) error {
	if len(a.Classes) == 0 {
		return fmt.Errorf("no classes")
	}
	seen := make(map[string]bool, len(a.Classes))
	for _, class := range a.Classes {
		if !domain.Category(class).Valid() {
			return fmt.Errorf("unknown class %q", class)
		}
		if seen[class] {
			return fmt.Errorf("duplicate class %q", class)
		}
		seen[class] = true
	}
	if len(a.Classes) != len(domain.Categories()) {
		return fmt.Errorf("model has %d classes, want %d", len(a.Classes), len(domain.Categories()))
	}
	if len(a.Coefficients) != len(a.Classes) {
		return fmt.Errorf("coefficient rows %d do not match classes %d", len(a.Coefficients), len(a.Classes))
	}
	for i, row := range a.Coefficients {
		if len(row) != featureCount {
			return fmt.Errorf("coefficient row %d has %d features, want %d", i, len(row), featureCount)
		}
	}
	if len(a.Intercepts) != len(a.Classes) {
		return fmt.Errorf("intercepts %d do not match classes %d", len(a.Intercepts), len(a.Classes))
	}
	return nil
}
