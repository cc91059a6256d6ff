package usecase

import (
	"fmt"
	"math"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/quality"
)

// Weighting of the three aggregate scores. Coverage dominates: having
// every category represented at all matters more than perfect balance
// or classifier certainty.
const (
	coverageWeight   = 0.4
	balanceWeight    = 0.3
	confidenceWeight = 0.3
)

// Scorer turns a list of classified requirements into the aggregate
// quality picture of an SRS. Pure computation, no I/O.
type Scorer struct {
	policy quality.Policy
}

func NewScorer(policy quality.Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Score fills every analytical field of an AnalysisResult except
// identity and provenance (ID, UploadID, extraction metadata), which
// the calling pipeline owns. Zero requirements is a designed outcome:
// all scores are zero, risk is Critical and every category is a gap.
func (s *Scorer) Score(requirements []domain.ClassifiedRequirement, profile domain.DomainProfile) domain.AnalysisResult {
	total := len(requirements)
	counts := make(map[domain.Category]int, len(domain.Categories()))
	for _, req := range requirements {
		counts[req.Category]++
	}

	categoryScores := make(map[domain.Category]domain.CategoryScore, len(domain.Categories()))
	var present, missing []domain.Category
	for _, cat := range domain.Categories() {
		count := counts[cat]
		minRecommended := s.policy.MinRecommended(cat)

		var percentage, score float64
		if total > 0 {
			percentage = 100 * float64(count) / float64(total)
			targetShare := s.policy.IdealPercent(cat) / 100 * float64(total)
			if targetShare > 0 {
				score = math.Min(100, 100*float64(count)/targetShare)
			}
		}

		categoryScores[cat] = domain.CategoryScore{
			Category:       cat,
			Count:          count,
			Percentage:     percentage,
			MeetsMinimum:   count >= minRecommended,
			MinRecommended: minRecommended,
			Score:          score,
		}
		if count > 0 {
			present = append(present, cat)
		} else {
			missing = append(missing, cat)
		}
	}

	var coverage, balance, confidence float64
	if total > 0 {
		coverage = 100 * float64(len(present)) / float64(len(domain.Categories()))
		balance = s.balanceScore(categoryScores, total)
		confidence = meanConfidence(requirements)
	}
	overall := coverageWeight*coverage + balanceWeight*balance + confidenceWeight*confidence

	gaps := s.gapAnalysis(categoryScores)

	return domain.AnalysisResult{
		TotalRequirements: total,
		OverallScore:      overall,
		CoverageScore:     coverage,
		BalanceScore:      balance,
		ConfidenceScore:   confidence,
		RiskLevel:         domain.RiskLevelForScore(overall),
		CategoryScores:    categoryScores,
		Requirements:      requirements,
		Recommendations:   s.recommendations(gaps, profile),
		GapAnalysis:       gaps,
		CategoriesPresent: present,
		CategoriesMissing: missing,
		Domain:            profile,
	}
}

// balanceScore is 100 minus the population standard deviation of the
// signed difference between each category's actual and ideal share,
// clamped to [0,100].
func (s *Scorer) balanceScore(scores map[domain.Category]domain.CategoryScore, total int) float64 {
	n := float64(len(domain.Categories()))
	var mean float64
	deviations := make([]float64, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		d := scores[cat].Percentage - s.policy.IdealPercent(cat)
		deviations = append(deviations, d)
		mean += d / n
	}
	var variance float64
	for _, d := range deviations {
		variance += (d - mean) * (d - mean) / n
	}
	balance := 100 - math.Sqrt(variance)
	if balance < 0 {
		return 0
	}
	if balance > 100 {
		return 100
	}
	return balance
}

// meanConfidence averages the already percentage-scaled confidences.
func meanConfidence(requirements []domain.ClassifiedRequirement) float64 {
	var sum float64
	for _, req := range requirements {
		sum += req.Confidence
	}
	return sum / float64(len(requirements))
}

// gapAnalysis lists missing categories and categories below their
// recommended minimum, in category order.
func (s *Scorer) gapAnalysis(scores map[domain.Category]domain.CategoryScore) []domain.Gap {
	var gaps []domain.Gap
	for _, cat := range domain.Categories() {
		cs := scores[cat]
		minRecommended := cs.MinRecommended
		switch {
		case cs.Count == 0:
			gaps = append(gaps, domain.Gap{
				Category:    cat,
				GapType:     domain.GapMissing,
				Count:       0,
				MinRequired: minRecommended,
				Shortage:    minRecommended,
			})
		case cs.Count < minRecommended:
			gaps = append(gaps, domain.Gap{
				Category:    cat,
				GapType:     domain.GapInsufficient,
				Count:       cs.Count,
				MinRequired: minRecommended,
				Shortage:    minRecommended - cs.Count,
			})
		}
	}
	return gaps
}

// recommendations derives one actionable entry per gap. Missing beats
// insufficient for priority, and a category flagged critical for the
// detected domain always escalates to high.
func (s *Scorer) recommendations(gaps []domain.Gap, profile domain.DomainProfile) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(gaps))
	for _, gap := range gaps {
		priority := domain.PriorityMedium
		if gap.GapType == domain.GapMissing {
			priority = domain.PriorityHigh
		}
		if profile.IsCritical(gap.Category) {
			priority = domain.PriorityHigh
		}

		var message string
		if gap.GapType == domain.GapMissing {
			message = fmt.Sprintf("No %s requirements found. Add at least %d to cover this category.", gap.Category, gap.MinRequired)
		} else {
			message = fmt.Sprintf("Only %d %s requirement(s) found; at least %d recommended. Add %d more.", gap.Count, gap.Category, gap.MinRequired, gap.Shortage)
		}
		if profile.IsCritical(gap.Category) {
			message += fmt.Sprintf(" %s is critical for the %s domain.", gap.Category, profile.Name)
		}

		out = append(out, domain.Recommendation{
			Category: gap.Category,
			Priority: priority,
			Message:  message,
		})
	}
	return out
}
