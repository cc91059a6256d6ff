// Package domaindetect infers the application domain of an SRS. The
// primary path asks an LLM service; when that service is down or
// answers garbage, a keyword scan over the policy's domain profiles
// takes over so analysis never fails on domain detection.
package domaindetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "domaindetect status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("domaindetect %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("domaindetect %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// llmAnswer is the JSON object the model is instructed to return.
type llmAnswer struct {
	Domain             string   `json:"domain"`
	Confidence         float64  `json:"confidence"`
	CriticalCategories []string `json:"critical_categories"`
}

// DetectDomain asks the generation endpoint for a JSON verdict on the
// document excerpt.
func (c *Client) DetectDomain(ctx context.Context, excerpt string, counts map[domain.Category]int) (domain.DomainProfile, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": buildDomainPrompt(excerpt, counts),
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "detect-domain"); err != nil {
		return domain.DomainProfile{}, err
	}

	var answer llmAnswer
	if err := json.Unmarshal([]byte(extractJSONObject(response.Response)), &answer); err != nil {
		return domain.DomainProfile{}, fmt.Errorf("parse domain answer: %w", err)
	}
	if strings.TrimSpace(answer.Domain) == "" {
		return domain.DomainProfile{}, fmt.Errorf("domain answer missing domain name")
	}
	if answer.Confidence < 0 {
		answer.Confidence = 0
	}
	if answer.Confidence > 1 {
		answer.Confidence = 1
	}

	var critical []domain.Category
	for _, raw := range answer.CriticalCategories {
		cat := domain.Category(strings.TrimSpace(raw))
		if cat.Valid() {
			critical = append(critical, cat)
		}
	}
	sort.Slice(critical, func(i, j int) bool { return critical[i] < critical[j] })

	return domain.DomainProfile{
		Name:               strings.TrimSpace(answer.Domain),
		Confidence:         answer.Confidence,
		CriticalCategories: critical,
		Source:             domain.DomainSourceLLM,
	}, nil
}

func buildDomainPrompt(excerpt string, counts map[domain.Category]int) string {
	var sb strings.Builder
	sb.WriteString("You are analyzing a software requirements specification.\n")
	sb.WriteString("Identify the application domain of the system it describes.\n\n")
	sb.WriteString("Requirement counts per quality category:\n")
	for _, cat := range domain.Categories() {
		fmt.Fprintf(&sb, "- %s: %d\n", cat, counts[cat])
	}
	sb.WriteString("\nDocument excerpt:\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n\nAnswer with a JSON object only:\n")
	sb.WriteString(`{"domain": "<short domain name>", "confidence": <0..1>, "critical_categories": ["<category>", ...]}`)
	sb.WriteString("\nCategories must come from: ")
	names := make([]string, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		names = append(names, string(cat))
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".")
	return sb.String()
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("domaindetect %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
