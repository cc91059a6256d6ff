package segmenting

import (
	"strings"
	"testing"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/quality"
)

func newTestSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	return New(quality.Default())
}

func TestSegmentKeywordStrength(t *testing.T) {
	seg := newTestSegmenter(t)

	text := "The system shall encrypt all stored passwords.\n" +
		"The server supports caching of frequently accessed report pages.\n" +
		"Introduction and general overview of the document structure here."

	candidates, stats := seg.Segment(text)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].KeywordStrength != domain.StrengthStrong {
		t.Errorf("first candidate strength = %s, want strong", candidates[0].KeywordStrength)
	}
	if candidates[1].KeywordStrength != domain.StrengthWeak {
		t.Errorf("second candidate strength = %s, want weak", candidates[1].KeywordStrength)
	}
	if stats.StrongMatches != 1 || stats.WeakMatches != 1 || stats.FilteredOut != 1 {
		t.Errorf("stats = %+v, want 1 strong, 1 weak, 1 filtered", stats)
	}
	if stats.TotalCandidates != len(candidates) {
		t.Errorf("TotalCandidates = %d, want %d", stats.TotalCandidates, len(candidates))
	}
}

func TestSegmentSourceIndexOrder(t *testing.T) {
	seg := newTestSegmenter(t)

	text := "The system shall log every failed login attempt.\n" +
		"The application must support concurrent sessions for many users.\n" +
		"Operators should receive alerts when disk usage is high."

	candidates, _ := seg.Segment(text)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	for i, c := range candidates {
		if c.SourceIndex != i {
			t.Errorf("candidate %d has SourceIndex %d", i, c.SourceIndex)
		}
	}
}

func TestSegmentSourceIndexSkipsFiltered(t *testing.T) {
	seg := newTestSegmenter(t)

	// The middle sentence fails the keyword gate, so the last candidate
	// keeps its raw position in the document instead of closing the gap.
	text := "The system shall log every failed login attempt.\n" +
		"Introduction and general overview of the document structure here.\n" +
		"Operators should receive alerts when disk usage is high."

	candidates, stats := seg.Segment(text)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(candidates), candidates)
	}
	if stats.FilteredOut != 1 {
		t.Errorf("FilteredOut = %d, want 1", stats.FilteredOut)
	}
	if candidates[0].SourceIndex != 0 || candidates[1].SourceIndex != 2 {
		t.Errorf("source indexes = %d, %d, want 0, 2",
			candidates[0].SourceIndex, candidates[1].SourceIndex)
	}
}

func TestSegmentShortFragmentsFiltered(t *testing.T) {
	seg := newTestSegmenter(t)

	candidates, stats := seg.Segment("Must work.\nThe system shall authenticate users before granting access.")
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if stats.FilteredOut != 1 {
		t.Errorf("FilteredOut = %d, want 1", stats.FilteredOut)
	}
	if !strings.Contains(candidates[0].Text, "authenticate") {
		t.Errorf("kept wrong segment: %q", candidates[0].Text)
	}
}

func TestSegmentDecimalPointIsNotBoundary(t *testing.T) {
	seg := newTestSegmenter(t)

	candidates, _ := seg.Segment("The system shall respond within 2.5 seconds under normal load.")
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(candidates), candidates)
	}
	if !strings.Contains(candidates[0].Text, "2.5 seconds") {
		t.Errorf("decimal split apart: %q", candidates[0].Text)
	}
}

func TestSegmentListMarkersStripped(t *testing.T) {
	seg := newTestSegmenter(t)

	text := "1. The system shall support export of reports to PDF format.\n" +
		"- The system must validate all user input on the server side.\n" +
		"• Users should be able to reset their own passwords via email."

	candidates, _ := seg.Segment(text)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if !strings.HasPrefix(c.Text, "The ") && !strings.HasPrefix(c.Text, "Users ") {
			t.Errorf("marker not stripped: %q", c.Text)
		}
	}
}

func TestSegmentKeepsDuplicates(t *testing.T) {
	seg := newTestSegmenter(t)

	line := "The system shall encrypt all traffic using TLS."
	candidates, _ := seg.Segment(line + "\n" + line)
	if len(candidates) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d candidates", len(candidates))
	}
}

func TestSegmentIdempotent(t *testing.T) {
	seg := newTestSegmenter(t)

	text := "2) The system shall archive records older than five years.\n" +
		"Performance may degrade gracefully when the database is offline."
	first, firstStats := seg.Segment(text)
	second, secondStats := seg.Segment(text)
	if len(first) != len(second) || firstStats != secondStats {
		t.Fatalf("segmentation not deterministic: %d/%d candidates", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("candidate %d differs between runs", i)
		}
	}
}

func TestSegmentLowAlnumFiltered(t *testing.T) {
	seg := newTestSegmenter(t)

	candidates, stats := seg.Segment("==== ---- ==== system shall ---- ==== ---- ====")
	if len(candidates) != 0 {
		t.Fatalf("expected separator line to be filtered, got %+v", candidates)
	}
	if stats.FilteredOut != 1 {
		t.Errorf("FilteredOut = %d, want 1", stats.FilteredOut)
	}
}

func TestEvidenceSegmentsSkipKeywordFilter(t *testing.T) {
	seg := newTestSegmenter(t)

	text := "Unit testing is performed for every module before integration.\n" +
		"Code reviews are mandatory for all merge requests in the project."
	evidence := seg.EvidenceSegments(text)
	if len(evidence) != 2 {
		t.Fatalf("expected 2 evidence segments, got %d", len(evidence))
	}

	candidates, _ := seg.Segment(text)
	if len(candidates) != 0 {
		t.Errorf("requirement segmentation should drop keyword-free text, got %d", len(candidates))
	}
}
