package domain

import "time"

type PlanStrength string

const (
	PlanStrong   PlanStrength = "Strong"
	PlanModerate PlanStrength = "Moderate"
	PlanWeak     PlanStrength = "Weak"
)

// PlanStrengthForCoverage grades overall coverage on the fixed 80/50
// thresholds.
func PlanStrengthForCoverage(coverage float64) PlanStrength {
	switch {
	case coverage >= 80:
		return PlanStrong
	case coverage >= 50:
		return PlanModerate
	default:
		return PlanWeak
	}
}

// CategoryCoverage records how one quality category fared in the plan
// match: whether the plan shows evidence for it, and what the SRS side
// of the comparison looked like.
type CategoryCoverage struct {
	Covered             bool     `json:"covered"`
	EvidenceCount       int      `json:"evidence_count"`
	EvidenceSnippets    []string `json:"evidence_snippets"`
	InSRS               bool     `json:"in_srs"`
	SRSRequirementCount int      `json:"srs_requirement_count"`
}

type SuggestionType string

const (
	SuggestionUncovered   SuggestionType = "uncovered"
	SuggestionProactive   SuggestionType = "proactive"
	SuggestionLowCoverage SuggestionType = "low_coverage"
)

type PlanSuggestion struct {
	Category Category       `json:"category"`
	Type     SuggestionType `json:"type"`
	Priority Priority       `json:"priority"`
	Message  string         `json:"message"`
}

// QualityPlanCoverage is the immutable result of matching a quality
// plan document against an SRS analysis.
type QualityPlanCoverage struct {
	ID         string `json:"plan_id"`
	AnalysisID string `json:"analysis_id"`

	OverallCoverage   float64                       `json:"overall_coverage"`
	AchievableQuality float64                       `json:"achievable_quality"`
	PlanStrength      PlanStrength                  `json:"plan_strength"`
	CategoryCoverage  map[Category]CategoryCoverage `json:"category_coverage"`
	Suggestions       []PlanSuggestion              `json:"suggestions"`
	Summary           string                        `json:"summary"`

	// SRSWarning is set when the uploaded plan reads like an SRS
	// rather than a quality plan.
	SRSWarning string `json:"srs_warning,omitempty"`

	WordCount int       `json:"word_count"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}
