package domain

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskLevelForScore maps an overall score to its risk band. The
// thresholds drive user-facing urgency messaging and are fixed.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	case score >= 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// CategoryScore is the per-category slice of an analysis. One exists
// for every category, including those with zero requirements.
type CategoryScore struct {
	Category       Category `json:"category"`
	Count          int      `json:"count"`
	Percentage     float64  `json:"percentage"`
	MeetsMinimum   bool     `json:"meets_minimum"`
	MinRecommended int      `json:"min_recommended"`
	Score          float64  `json:"score"`
}

type GapType string

const (
	GapMissing      GapType = "missing"
	GapInsufficient GapType = "insufficient"
)

// Gap flags a category with no requirements or fewer than recommended.
type Gap struct {
	Category    Category `json:"category"`
	GapType     GapType  `json:"gap_type"`
	Count       int      `json:"count"`
	MinRequired int      `json:"min_required"`
	Shortage    int      `json:"shortage"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityInfo   Priority = "info"
)

type Recommendation struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// DomainSource records which detection path produced a DomainProfile.
const (
	DomainSourceLLM      = "llm"
	DomainSourceKeywords = "keywords"
	DomainSourceFallback = "fallback"
)

// DomainProfile is the detected application domain of an SRS, used to
// escalate recommendation priorities for domain-critical categories.
type DomainProfile struct {
	Name               string     `json:"name"`
	Confidence         float64    `json:"confidence"`
	CriticalCategories []Category `json:"critical_categories"`
	Source             string     `json:"source"`
}

// IsCritical reports whether the category is flagged critical for the
// detected domain.
func (d DomainProfile) IsCritical(c Category) bool {
	for _, crit := range d.CriticalCategories {
		if crit == c {
			return true
		}
	}
	return false
}

// AnalysisResult is the terminal, immutable output of one pipeline run.
type AnalysisResult struct {
	ID       string `json:"analysis_id"`
	UploadID string `json:"upload_id"`

	TotalRequirements int       `json:"total_requirements"`
	OverallScore      float64   `json:"overall_score"`
	CoverageScore     float64   `json:"coverage_score"`
	BalanceScore      float64   `json:"balance_score"`
	ConfidenceScore   float64   `json:"confidence_score"`
	RiskLevel         RiskLevel `json:"risk_level"`

	CategoryScores     map[Category]CategoryScore `json:"category_scores"`
	Requirements       []ClassifiedRequirement    `json:"requirements"`
	Recommendations    []Recommendation           `json:"recommendations"`
	GapAnalysis        []Gap                      `json:"gap_analysis"`
	CategoriesPresent  []Category                 `json:"categories_present"`
	CategoriesMissing  []Category                 `json:"categories_missing"`

	Domain          DomainProfile   `json:"domain"`
	ExtractionStats ExtractionStats `json:"extraction_stats"`
	WordCount       int             `json:"word_count"`
	PageCount       int             `json:"page_count"`
	CreatedAt       time.Time       `json:"created_at"`
}
