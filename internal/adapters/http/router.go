package httpadapter

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/qualitymap/qualitymap/internal/core/ports"
	"github.com/qualitymap/qualitymap/internal/observability/metrics"
)

// Options carries the traffic knobs the router applies around the mux.
type Options struct {
	ServiceName        string
	MaxUploadBytes     int64
	RateLimitPerSecond float64
	RateLimitBurst     int
	MaxInFlight        int
	InFlightWait       time.Duration
}

type Router struct {
	ingestor     ports.UploadIngestor
	syncIngestor ports.UploadIngestor
	runner       ports.AnalysisRunner
	reader       ports.AnalysisReader
	planner      ports.PlanAnalyzer
	classifier   ports.TextClassifier
	exporter     ports.ReportExporter
	uploads      ports.UploadRepository
	metrics      *metrics.HTTPServerMetrics
	opts         Options
}

func NewRouter(
	ingestor ports.UploadIngestor,
	syncIngestor ports.UploadIngestor,
	runner ports.AnalysisRunner,
	reader ports.AnalysisReader,
	planner ports.PlanAnalyzer,
	classifier ports.TextClassifier,
	exporter ports.ReportExporter,
	uploads ports.UploadRepository,
	serverMetrics *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "qualitymap-api"
	}
	if opts.InFlightWait <= 0 {
		opts.InFlightWait = 100 * time.Millisecond
	}
	return &Router{
		ingestor:     ingestor,
		syncIngestor: syncIngestor,
		runner:       runner,
		reader:       reader,
		planner:      planner,
		classifier:   classifier,
		exporter:     exporter,
		uploads:      uploads,
		metrics:      serverMetrics,
		opts:         opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/uploads", rt.createUpload)
	mux.HandleFunc("/v1/uploads/", rt.getUpload)
	mux.HandleFunc("/v1/analyses", rt.analyzeDocument)
	mux.HandleFunc("/v1/analyses/", rt.analysisSubresource)
	mux.HandleFunc("/v1/classify", rt.classifyTexts)

	handler := rt.metrics.Middleware(rt.opts.ServiceName, mux)
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.InFlightWait)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitPerSecond, rt.opts.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createUpload stores the document and enqueues analysis. The result
// arrives later through the worker; poll GET /v1/uploads/{id}.
func (rt *Router) createUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	file, header, ok := rt.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	up, err := rt.ingestor.Ingest(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, up)
}

func (rt *Router) getUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/uploads/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload id is required"})
		return
	}

	up, err := rt.uploads.GetUpload(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}

// analyzeDocument runs the whole pipeline in the request. The upload
// is stored without enqueueing so the worker never sees it.
func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	file, header, ok := rt.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	up, err := rt.syncIngestor.Ingest(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	res, err := rt.runner.AnalyzeUpload(r.Context(), up.ID)
	if err != nil {
		rt.metrics.RecordAnalysis(rt.opts.ServiceName, "error", 0, time.Since(start))
		writeError(w, err)
		return
	}

	rt.metrics.RecordAnalysis(rt.opts.ServiceName, "success", res.TotalRequirements, time.Since(start))
	rt.metrics.RecordDomainDetection(rt.opts.ServiceName, res.Domain.Source)
	for category, score := range res.CategoryScores {
		rt.metrics.RecordClassification(rt.opts.ServiceName, string(category), score.Count)
	}

	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) analysisSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/analyses/")
	switch {
	case strings.HasSuffix(rest, "/plan"):
		id := strings.TrimSuffix(rest, "/plan")
		rt.handlePlan(w, r, id)
	case strings.HasSuffix(rest, "/report.xlsx"):
		id := strings.TrimSuffix(rest, "/report.xlsx")
		rt.handleReport(w, r, id)
	default:
		rt.getAnalysis(w, r, rest)
	}
}

func (rt *Router) getAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	res, err := rt.reader.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) handlePlan(w http.ResponseWriter, r *http.Request, analysisID string) {
	if analysisID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	switch r.Method {
	case http.MethodPost:
		file, header, ok := rt.formFile(w, r)
		if !ok {
			return
		}
		defer file.Close()

		cov, err := rt.planner.MatchPlan(r.Context(), analysisID, header.Filename, header.Size, file)
		if err != nil {
			writeError(w, err)
			return
		}
		rt.metrics.RecordPlanMatch(rt.opts.ServiceName, string(cov.PlanStrength))
		writeJSON(w, http.StatusOK, cov)
	case http.MethodGet:
		cov, err := rt.planner.GetPlan(r.Context(), analysisID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cov)
	default:
		writeMethodNotAllowed(w)
	}
}

func (rt *Router) handleReport(w http.ResponseWriter, r *http.Request, analysisID string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if analysisID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	res, err := rt.reader.GetAnalysis(r.Context(), analysisID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := rt.exporter.ExportAnalysis(res)
	if err != nil {
		rt.metrics.RecordExport(rt.opts.ServiceName, "error")
		writeError(w, err)
		return
	}
	rt.metrics.RecordExport(rt.opts.ServiceName, "success")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "analysis_"+analysisID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) classifyTexts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	results, err := rt.classifier.ClassifyTexts(r.Context(), req.Texts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// formFile pulls the multipart "file" field with the upload size cap
// applied to the whole body.
func (rt *Router) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if rt.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes+formOverheadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return nil, nil, false
	}
	return file, header, true
}

// multipart form framing allowance on top of the file size cap.
const formOverheadBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  errorCode(err),
	})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
