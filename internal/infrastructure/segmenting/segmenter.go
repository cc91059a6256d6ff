// Package segmenting splits extracted document text into requirement
// candidates. Splitting is sentence-oriented: line breaks and
// sentence-ending punctuation terminate a segment, except for periods
// that sit inside a number. List markers at line starts are stripped so
// bulleted requirements read as plain sentences.
package segmenting

import (
	"strings"
	"unicode"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/quality"
)

type Segmenter struct {
	minLen     int
	maxLen     int
	alnumRatio float64
	strong     []string
	weak       []string
}

func New(policy quality.Policy) *Segmenter {
	return &Segmenter{
		minLen:     policy.MinSegmentLength,
		maxLen:     policy.MaxSegmentLength,
		alnumRatio: policy.AlnumRatio,
		strong:     lowerAll(policy.StrongKeywords),
		weak:       lowerAll(policy.WeakKeywords),
	}
}

// Segment returns the requirement candidates found in text, in document
// order, together with counts of what was kept and filtered. Segments
// without any requirement signal word are dropped. Duplicates are kept;
// repeated requirements are a real property of the source document.
func (s *Segmenter) Segment(text string) ([]domain.RequirementCandidate, domain.ExtractionStats) {
	var stats domain.ExtractionStats
	var out []domain.RequirementCandidate

	for rawIndex, seg := range s.rawSegments(text) {
		if !s.passesShapeFilter(seg) {
			stats.FilteredOut++
			continue
		}
		strength := s.keywordStrength(seg)
		if strength == domain.StrengthNone {
			stats.FilteredOut++
			continue
		}
		if strength == domain.StrengthStrong {
			stats.StrongMatches++
		} else {
			stats.WeakMatches++
		}
		// SourceIndex points into the raw segment list, so filtered
		// segments leave gaps and the statement stays locatable in the
		// source document.
		out = append(out, domain.RequirementCandidate{
			Text:            seg,
			SourceIndex:     rawIndex,
			KeywordStrength: strength,
		})
		stats.TotalCandidates++
	}
	return out, stats
}

// EvidenceSegments applies the same cleaning and shape filter as
// Segment but keeps segments regardless of requirement signal words.
// Quality plans describe activities, not requirements, so the keyword
// gate would discard most of their content.
func (s *Segmenter) EvidenceSegments(text string) []string {
	var out []string
	for _, seg := range s.rawSegments(text) {
		if s.passesShapeFilter(seg) {
			out = append(out, seg)
		}
	}
	return out
}

// rawSegments cleans and splits text into trimmed, whitespace-collapsed
// segments before any filtering.
func (s *Segmenter) rawSegments(text string) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		line = stripListMarker(line)
		for _, sentence := range splitSentences(line) {
			sentence = collapseWhitespace(sentence)
			if sentence != "" {
				segments = append(segments, sentence)
			}
		}
	}
	return segments
}

func (s *Segmenter) passesShapeFilter(seg string) bool {
	n := len([]rune(seg))
	if n < s.minLen || n > s.maxLen {
		return false
	}
	return alnumRatio(seg) >= s.alnumRatio
}

func (s *Segmenter) keywordStrength(seg string) domain.KeywordStrength {
	lower := strings.ToLower(seg)
	for _, kw := range s.strong {
		if strings.Contains(lower, kw) {
			return domain.StrengthStrong
		}
	}
	for _, kw := range s.weak {
		if strings.Contains(lower, kw) {
			return domain.StrengthWeak
		}
	}
	return domain.StrengthNone
}

// splitSentences breaks a line after '.', '!' or '?'. A period directly
// followed by a digit is treated as a decimal point, not a boundary, so
// "within 2.5 seconds" stays whole.
func splitSentences(line string) []string {
	runes := []rune(line)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// stripListMarker removes a leading bullet or enumeration marker such
// as "-", "*", "1.", "1)", "a)" or "(ii)" from a line.
func stripListMarker(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return trimmed
	}

	switch trimmed[0] {
	case '-', '*':
		return strings.TrimLeft(trimmed[1:], " \t")
	}
	if strings.HasPrefix(trimmed, "•") {
		return strings.TrimLeft(strings.TrimPrefix(trimmed, "•"), " \t")
	}

	runes := []rune(trimmed)
	i := 0
	if runes[i] == '(' {
		i++
	}
	j := i
	for j < len(runes) && j-i < 4 && (unicode.IsDigit(runes[j]) || unicode.IsLower(runes[j])) {
		j++
	}
	if j == i || j >= len(runes) {
		return trimmed
	}
	switch runes[j] {
	case '.', ')':
		rest := strings.TrimLeft(string(runes[j+1:]), " \t")
		// Require a marker shape: digits, or a short letter run like
		// "a)" or "(iv)". Plain words followed by a period are prose.
		if isDigits(runes[i:j]) || j-i <= 3 {
			if rest != "" {
				return rest
			}
		}
	}
	return trimmed
}

func isDigits(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(rs) > 0
}

func alnumRatio(seg string) float64 {
	runes := []rune(seg)
	if len(runes) == 0 {
		return 0
	}
	alnum := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum) / float64(len(runes))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.ToLower(v)
	}
	return out
}
