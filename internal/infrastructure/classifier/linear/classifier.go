package linear

import (
	"fmt"
	"math"
	"strings"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

// Classifier scores requirement text against the seven quality
// categories with a linear model over TF-IDF features.
type Classifier struct {
	vec        *vectorizer
	classes    []domain.Category
	coefs      [][]float64
	intercepts []float64
}

// New loads the vectorizer and model artifacts. Any load or validation
// failure is a classification error; callers treat it as fatal at
// startup.
func New(vectorizerPath, modelPath string) (*Classifier, error) {
	vecArt, err := loadVectorizerArtifact(vectorizerPath)
	if err != nil {
		return nil, err
	}
	modelArt, err := loadModelArtifact(modelPath)
	if err != nil {
		return nil, err
	}
	if err := modelArt.validate(len(vecArt.IDF)); err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "validate model artifact", err)
	}

	classes := make([]domain.Category, len(modelArt.Classes))
	for i, c := range modelArt.Classes {
		classes[i] = domain.Category(c)
	}
	return &Classifier{
		vec:        newVectorizer(vecArt),
		classes:    classes,
		coefs:      modelArt.Coefficients,
		intercepts: modelArt.Intercepts,
	}, nil
}

func (c *Classifier) Classify(text string) (domain.ClassifiedRequirement, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ClassifiedRequirement{}, domain.WrapError(domain.ErrValidation, "classify", fmt.Errorf("empty requirement text"))
	}
	features := c.vec.transform(text)
	return c.verdict(text, c.decisionScores(features)), nil
}

// ClassifyBatch vectorizes the whole batch in one transform call and
// scores the resulting feature matrix in one pass. A single empty text
// fails the whole batch before any scoring happens.
func (c *Classifier) ClassifyBatch(texts []string) ([]domain.ClassifiedRequirement, error) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, domain.WrapError(domain.ErrValidation, "classify batch", fmt.Errorf("empty requirement text at index %d", i))
		}
	}
	matrix := c.vec.transformBatch(texts)
	scores := c.decisionScoresBatch(matrix)
	out := make([]domain.ClassifiedRequirement, len(texts))
	for i := range texts {
		out[i] = c.verdict(texts[i], scores[i])
	}
	return out, nil
}

// verdict turns one row of decision scores into a classified
// requirement with percentage-scaled confidence and distribution.
func (c *Classifier) verdict(text string, scores []float64) domain.ClassifiedRequirement {
	probs := softmax(scores)

	distribution := make(map[domain.Category]float64, len(c.classes))
	for i, class := range c.classes {
		distribution[class] = 100 * probs[i]
	}

	// Ties resolve to the alphabetically first category, so repeated
	// runs over the same text always agree.
	best := domain.Category("")
	bestScore := math.Inf(-1)
	for _, cat := range domain.Categories() {
		if p := distribution[cat]; p > bestScore {
			best = cat
			bestScore = p
		}
	}

	return domain.ClassifiedRequirement{
		Text:         text,
		Category:     best,
		Confidence:   bestScore,
		Distribution: distribution,
	}
}

// decisionScoresBatch computes W·X + b for the whole feature matrix,
// one score row per input row.
func (c *Classifier) decisionScoresBatch(matrix []map[int]float64) [][]float64 {
	scores := make([][]float64, len(matrix))
	for i, features := range matrix {
		scores[i] = c.decisionScores(features)
	}
	return scores
}

// decisionScores computes W·x + b over the sparse feature vector.
func (c *Classifier) decisionScores(features map[int]float64) []float64 {
	scores := make([]float64, len(c.classes))
	for i := range c.classes {
		score := c.intercepts[i]
		row := c.coefs[i]
		for idx, value := range features {
			score += row[idx] * value
		}
		scores[i] = score
	}
	return scores
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
