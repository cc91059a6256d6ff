// Package quality holds the category policy: everything about the seven
// quality characteristics that is data rather than logic. That covers
// the ideal share of requirements per category, minimum recommended
// counts, the signal words that mark requirement statements, the
// evidence phrases that mark quality-plan coverage, and keyword profiles
// for domain detection. The defaults are compiled in; a YAML file can
// override any part of them.
package quality

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type CategoryPolicy struct {
	// IdealPercent is this category's share of a well-balanced SRS.
	// All seven values sum to 100.
	IdealPercent float64 `yaml:"ideal_percent"`

	// MinRecommended is the smallest requirement count below which the
	// category is reported as a gap.
	MinRecommended int `yaml:"min_recommended"`

	// EvidenceKeywords are the phrases whose presence in a quality
	// plan counts as coverage evidence for this category.
	EvidenceKeywords []string `yaml:"evidence_keywords"`
}

// DomainKeywordProfile supports the deterministic fallback when the
// external domain-classification service is unavailable.
type DomainKeywordProfile struct {
	Name               string            `yaml:"name"`
	Keywords           []string          `yaml:"keywords"`
	CriticalCategories []domain.Category `yaml:"critical_categories"`
}

type Policy struct {
	// Segmentation thresholds.
	MinSegmentLength int     `yaml:"min_segment_length"`
	MaxSegmentLength int     `yaml:"max_segment_length"`
	AlnumRatio       float64 `yaml:"alnum_ratio"`

	// Requirement signal words. A strong match makes a candidate; a
	// weak match without a strong one also makes a candidate; neither
	// discards the segment.
	StrongKeywords []string `yaml:"strong_keywords"`
	WeakKeywords   []string `yaml:"weak_keywords"`

	// EvidenceSnippetCap bounds evidence_snippets per category in plan
	// coverage results. The true count is always reported.
	EvidenceSnippetCap int `yaml:"evidence_snippet_cap"`

	Categories map[domain.Category]CategoryPolicy `yaml:"categories"`
	Domains    []DomainKeywordProfile             `yaml:"domains"`
}

// Load returns the default policy merged with the YAML file at path.
// An empty path returns the defaults unchanged.
func Load(path string) (Policy, error) {
	policy := Default()
	if path == "" {
		if err := policy.Validate(); err != nil {
			return Policy{}, err
		}
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return policy, nil
}

func (p Policy) Validate() error {
	if p.MinSegmentLength <= 0 || p.MaxSegmentLength <= p.MinSegmentLength {
		return fmt.Errorf("segment length bounds invalid: min=%d max=%d", p.MinSegmentLength, p.MaxSegmentLength)
	}
	if p.AlnumRatio <= 0 || p.AlnumRatio > 1 {
		return fmt.Errorf("alnum ratio out of range: %v", p.AlnumRatio)
	}
	if len(p.StrongKeywords) == 0 || len(p.WeakKeywords) == 0 {
		return fmt.Errorf("keyword lists must not be empty")
	}
	if p.EvidenceSnippetCap <= 0 {
		return fmt.Errorf("evidence snippet cap must be positive")
	}

	if len(p.Categories) != len(domain.Categories()) {
		return fmt.Errorf("expected %d category policies, got %d", len(domain.Categories()), len(p.Categories))
	}
	totalPercent := 0.0
	for _, cat := range domain.Categories() {
		cp, ok := p.Categories[cat]
		if !ok {
			return fmt.Errorf("missing policy for category %s", cat)
		}
		if cp.IdealPercent <= 0 {
			return fmt.Errorf("category %s: ideal percent must be positive", cat)
		}
		if cp.MinRecommended < 1 {
			return fmt.Errorf("category %s: min recommended must be at least 1", cat)
		}
		if len(cp.EvidenceKeywords) == 0 {
			return fmt.Errorf("category %s: evidence keywords must not be empty", cat)
		}
		totalPercent += cp.IdealPercent
	}
	if math.Abs(totalPercent-100) > 1e-9 {
		return fmt.Errorf("ideal percentages must sum to 100, got %v", totalPercent)
	}

	for _, profile := range p.Domains {
		for _, cat := range profile.CriticalCategories {
			if !cat.Valid() {
				return fmt.Errorf("domain %s: unknown critical category %q", profile.Name, cat)
			}
		}
	}
	return nil
}

// MinRecommended returns the threshold for one category.
func (p Policy) MinRecommended(cat domain.Category) int {
	return p.Categories[cat].MinRecommended
}

// IdealPercent returns the ideal share for one category.
func (p Policy) IdealPercent(cat domain.Category) float64 {
	return p.Categories[cat].IdealPercent
}

// EvidenceKeywords returns the plan evidence phrases for one category.
func (p Policy) EvidenceKeywords(cat domain.Category) []string {
	return p.Categories[cat].EvidenceKeywords
}
