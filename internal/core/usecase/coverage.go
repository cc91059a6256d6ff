package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/core/ports"
	"github.com/qualitymap/qualitymap/internal/quality"
)

// Achievable quality blends what the SRS itself scored with how much of
// it the plan covers, in equal parts.
const (
	achievableSRSWeight  = 0.5
	achievablePlanWeight = 0.5
)

// srsLikeness thresholds: a "plan" whose segments are mostly obligation
// statements is probably an SRS uploaded by mistake.
const (
	srsLikenessMinCandidates = 5
	srsLikenessRatio         = 0.5
)

// CoverageMatcher matches a quality plan document against an analyzed
// SRS, category by category.
type CoverageMatcher struct {
	policy    quality.Policy
	segmenter ports.Segmenter
}

func NewCoverageMatcher(policy quality.Policy, segmenter ports.Segmenter) *CoverageMatcher {
	return &CoverageMatcher{policy: policy, segmenter: segmenter}
}

// Match computes coverage of the analysis by planText. Evidence is
// sentence-level: a category is covered when at least one plan segment
// mentions one of its evidence phrases.
func (m *CoverageMatcher) Match(analysis domain.AnalysisResult, planText string) domain.QualityPlanCoverage {
	segments := m.segmenter.EvidenceSegments(planText)

	coverage := make(map[domain.Category]domain.CategoryCoverage, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		srsScore := analysis.CategoryScores[cat]
		cc := domain.CategoryCoverage{
			InSRS:               srsScore.Count > 0,
			SRSRequirementCount: srsScore.Count,
		}

		keywords := m.policy.EvidenceKeywords(cat)
		for _, seg := range segments {
			start, end, ok := matchKeyword(seg, keywords)
			if !ok {
				continue
			}
			cc.EvidenceCount++
			if len(cc.EvidenceSnippets) < m.policy.EvidenceSnippetCap {
				cc.EvidenceSnippets = append(cc.EvidenceSnippets, snippet(seg, start, end))
			}
		}
		cc.Covered = cc.EvidenceCount > 0
		coverage[cat] = cc
	}

	var coveredInSRS, inSRS int
	for _, cc := range coverage {
		if cc.InSRS {
			inSRS++
			if cc.Covered {
				coveredInSRS++
			}
		}
	}
	overallCoverage := 100 * float64(coveredInSRS) / float64(max(1, inSRS))
	achievable := achievableSRSWeight*analysis.OverallScore + achievablePlanWeight*overallCoverage

	return domain.QualityPlanCoverage{
		AnalysisID:        analysis.ID,
		OverallCoverage:   overallCoverage,
		AchievableQuality: achievable,
		PlanStrength:      domain.PlanStrengthForCoverage(overallCoverage),
		CategoryCoverage:  coverage,
		Suggestions:       m.suggestions(coverage, analysis.Domain),
		Summary:           buildSummary(overallCoverage, coveredInSRS, inSRS),
		SRSWarning:        m.srsWarning(planText),
	}
}

// snippetContext is how many characters of surrounding text an
// evidence snippet keeps on each side of the keyword hit.
const snippetContext = 60

// matchKeyword returns the byte offsets of the first evidence keyword
// found in segment, case-insensitively.
func matchKeyword(segment string, keywords []string) (int, int, bool) {
	lower := strings.ToLower(segment)
	for _, kw := range keywords {
		if i := strings.Index(lower, strings.ToLower(kw)); i >= 0 {
			return i, i + len(kw), true
		}
	}
	return 0, 0, false
}

// snippet cuts a matched segment down to the keyword hit plus
// surrounding context, marking truncated edges with an ellipsis.
func snippet(segment string, start, end int) string {
	if end > len(segment) {
		end = len(segment)
	}
	if start > end {
		start = end
	}
	lo := start - snippetContext
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetContext
	if hi > len(segment) {
		hi = len(segment)
	}
	for lo > 0 && !utf8.RuneStart(segment[lo]) {
		lo--
	}
	for hi < len(segment) && !utf8.RuneStart(segment[hi]) {
		hi++
	}
	out := segment[lo:hi]
	if lo > 0 {
		out = "…" + out
	}
	if hi < len(segment) {
		out += "…"
	}
	return out
}

// suggestions emits the three fixed advice kinds in category order:
// SRS categories the plan misses, plan activity for categories the SRS
// never asks for, and SRS categories too thin to rely on even when the
// plan covers them.
func (m *CoverageMatcher) suggestions(coverage map[domain.Category]domain.CategoryCoverage, profile domain.DomainProfile) []domain.PlanSuggestion {
	var out []domain.PlanSuggestion

	for _, cat := range domain.Categories() {
		cc := coverage[cat]
		if !cc.InSRS || cc.Covered {
			continue
		}
		priority := domain.PriorityMedium
		if profile.IsCritical(cat) {
			priority = domain.PriorityHigh
		}
		out = append(out, domain.PlanSuggestion{
			Category: cat,
			Type:     domain.SuggestionUncovered,
			Priority: priority,
			Message:  fmt.Sprintf("The SRS contains %s requirements but the plan shows no verification activity for them.", cat),
		})
	}

	for _, cat := range domain.Categories() {
		cc := coverage[cat]
		if cc.InSRS || !cc.Covered {
			continue
		}
		out = append(out, domain.PlanSuggestion{
			Category: cat,
			Type:     domain.SuggestionProactive,
			Priority: domain.PriorityInfo,
			Message:  fmt.Sprintf("The plan covers %s although the SRS has no requirements in that category.", cat),
		})
	}

	for _, cat := range domain.Categories() {
		cc := coverage[cat]
		if !cc.InSRS || cc.SRSRequirementCount >= m.policy.MinRecommended(cat) {
			continue
		}
		out = append(out, domain.PlanSuggestion{
			Category: cat,
			Type:     domain.SuggestionLowCoverage,
			Priority: domain.PriorityMedium,
			Message:  fmt.Sprintf("The SRS has only %d %s requirement(s); plan coverage rests on a thin requirement base.", cc.SRSRequirementCount, cat),
		})
	}

	return out
}

func buildSummary(overallCoverage float64, coveredInSRS, inSRS int) string {
	return fmt.Sprintf(
		"The plan covers %d of %d quality categories present in the SRS (%.1f%%).",
		coveredInSRS, inSRS, overallCoverage,
	)
}

// srsWarning flags plan documents that read like requirement
// specifications: mostly obligation statements instead of activities.
func (m *CoverageMatcher) srsWarning(planText string) string {
	candidates, stats := m.segmenter.Segment(planText)
	if len(candidates) < srsLikenessMinCandidates {
		return ""
	}
	segments := len(m.segmenter.EvidenceSegments(planText))
	if segments == 0 {
		return ""
	}
	if float64(stats.StrongMatches)/float64(segments) >= srsLikenessRatio {
		return "This document reads like a requirements specification rather than a quality plan; coverage results may be misleading."
	}
	return ""
}
