package domaindetect

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/infrastructure/resilience"
	"github.com/qualitymap/qualitymap/internal/quality"
)

// excerptLimit bounds how much document text travels to the LLM.
const excerptLimit = 4000

// Detector tries the LLM collaborator first and degrades to the
// keyword profiles. Detect never returns an error from the LLM path;
// a broken collaborator means a keyword-sourced profile, not a failed
// analysis.
type Detector struct {
	client   *Client
	exec     *resilience.Executor
	profiles []quality.DomainKeywordProfile
	logger   *slog.Logger
}

// NewDetector builds a detector. client may be nil when no LLM service
// is configured; detection then always uses the keyword profiles.
func NewDetector(client *Client, exec *resilience.Executor, policy quality.Policy, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		client:   client,
		exec:     exec,
		profiles: policy.Domains,
		logger:   logger,
	}
}

func (d *Detector) Detect(ctx context.Context, text string, counts map[domain.Category]int) (domain.DomainProfile, error) {
	if d.client != nil {
		profile, err := d.detectLLM(ctx, text, counts)
		if err == nil {
			return profile, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.DomainProfile{}, ctxErr
		}
		d.logger.Warn("domain_detection_llm_failed", "error", err)
	}
	return d.detectKeywords(text), nil
}

func (d *Detector) detectLLM(ctx context.Context, text string, counts map[domain.Category]int) (domain.DomainProfile, error) {
	excerpt := text
	if runes := []rune(excerpt); len(runes) > excerptLimit {
		excerpt = string(runes[:excerptLimit])
	}

	var profile domain.DomainProfile
	err := d.exec.Execute(ctx, "domain_detect", func(ctx context.Context) error {
		var callErr error
		profile, callErr = d.client.DetectDomain(ctx, excerpt, counts)
		return callErr
	}, classifyDetectError)
	if err != nil {
		return domain.DomainProfile{}, err
	}
	return profile, nil
}

// detectKeywords scores every profile by keyword occurrences in the
// lowercased text and picks the best hit. Profiles are scanned in
// policy order, so the first of two equal scores wins.
func (d *Detector) detectKeywords(text string) domain.DomainProfile {
	lower := strings.ToLower(text)

	best := domain.DomainProfile{
		Name:   "General",
		Source: domain.DomainSourceFallback,
	}
	bestScore := 0
	for _, profile := range d.profiles {
		score := 0
		for _, kw := range profile.Keywords {
			score += strings.Count(lower, strings.ToLower(kw))
		}
		if score > bestScore {
			bestScore = score
			best = domain.DomainProfile{
				Name:               profile.Name,
				Confidence:         keywordConfidence(score),
				CriticalCategories: append([]domain.Category(nil), profile.CriticalCategories...),
				Source:             domain.DomainSourceKeywords,
			}
		}
	}
	return best
}

// keywordConfidence maps a raw hit count onto (0,1]; ten or more hits
// count as full confidence in the keyword guess.
func keywordConfidence(hits int) float64 {
	if hits >= 10 {
		return 1
	}
	return float64(hits) / 10
}

func classifyDetectError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
