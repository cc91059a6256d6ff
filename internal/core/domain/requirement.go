package domain

// KeywordStrength records which class of requirement signal word a
// candidate matched during segmentation. StrengthNone is only the zero
// value; candidates without any signal word are discarded, never emitted.
type KeywordStrength string

const (
	StrengthNone   KeywordStrength = "none"
	StrengthStrong KeywordStrength = "strong"
	StrengthWeak   KeywordStrength = "weak"
)

// RequirementCandidate is a text span extracted by segmentation, in
// source order, not yet classified. Immutable after creation.
type RequirementCandidate struct {
	Text            string          `json:"text"`
	SourceIndex     int             `json:"source_index"`
	KeywordStrength KeywordStrength `json:"keyword_strength"`
}

// ClassifiedRequirement is the classifier's verdict for one candidate.
// Confidence and every Distribution value are percentages in [0,100];
// the Distribution values sum to 100.
type ClassifiedRequirement struct {
	Text            string               `json:"text"`
	Category        Category             `json:"category"`
	Confidence      float64              `json:"confidence"`
	Distribution    map[Category]float64 `json:"probabilities"`
	KeywordStrength KeywordStrength      `json:"keyword_strength,omitempty"`
	SourceIndex     int                  `json:"source_index"`
}

// ExtractionStats summarizes what the segmenter kept and dropped.
type ExtractionStats struct {
	TotalCandidates int `json:"total_candidates"`
	StrongMatches   int `json:"strong_keyword_matches"`
	WeakMatches     int `json:"weak_keyword_matches"`
	FilteredOut     int `json:"filtered_out"`
}
