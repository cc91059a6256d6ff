package domaindetect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/infrastructure/resilience"
	"github.com/qualitymap/qualitymap/internal/quality"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 1,
		BreakerEnabled:    false,
	})
}

func TestDetectUsesLLMAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		answer := `{"domain": "Banking/Finance", "confidence": 0.92, "critical_categories": ["Security", "Reliability"]}`
		_ = json.NewEncoder(w).Encode(map[string]string{"response": answer})
	}))
	defer server.Close()

	detector := NewDetector(
		NewClient(server.URL, "test-model", time.Second),
		testExecutor(),
		quality.Default(),
		nil,
	)

	profile, err := detector.Detect(context.Background(), "The bank shall process payments.", map[domain.Category]int{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if profile.Name != "Banking/Finance" || profile.Source != domain.DomainSourceLLM {
		t.Errorf("profile = %+v, want LLM-sourced Banking/Finance", profile)
	}
	if !profile.IsCritical(domain.CategorySecurity) {
		t.Errorf("Security should be critical: %+v", profile.CriticalCategories)
	}
}

func TestDetectFallsBackToKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	detector := NewDetector(
		NewClient(server.URL, "test-model", time.Second),
		testExecutor(),
		quality.Default(),
		nil,
	)

	text := "Each patient record links a doctor, a diagnosis and a prescription history for hospital staff."
	profile, err := detector.Detect(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if profile.Name != "Healthcare" || profile.Source != domain.DomainSourceKeywords {
		t.Errorf("profile = %+v, want keyword-sourced Healthcare", profile)
	}
	if profile.Confidence <= 0 {
		t.Errorf("keyword confidence should be positive, got %f", profile.Confidence)
	}
}

func TestDetectNoClientNoKeywordHits(t *testing.T) {
	detector := NewDetector(nil, testExecutor(), quality.Default(), nil)

	profile, err := detector.Detect(context.Background(), "completely generic text without profile terms", nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if profile.Name != "General" || profile.Source != domain.DomainSourceFallback {
		t.Errorf("profile = %+v, want General fallback", profile)
	}
	if len(profile.CriticalCategories) != 0 {
		t.Errorf("fallback profile should have no critical categories")
	}
}

func TestDetectMalformedAnswerFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "not json at all"})
	}))
	defer server.Close()

	detector := NewDetector(
		NewClient(server.URL, "test-model", time.Second),
		testExecutor(),
		quality.Default(),
		nil,
	)

	profile, err := detector.Detect(context.Background(), "vehicle fleet route tracking for delivery drivers", nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if profile.Name != "Transportation/Logistics" || profile.Source != domain.DomainSourceKeywords {
		t.Errorf("profile = %+v, want keyword-sourced Transportation/Logistics", profile)
	}
}
