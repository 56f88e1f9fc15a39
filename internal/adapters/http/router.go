package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/verdictio/caselaw-api/internal/core/ports"
	"github.com/verdictio/caselaw-api/internal/observability/metrics"
)

// RouterConfig carries the traffic-control knobs the middleware chain
// needs. Zero values disable the corresponding gate.
type RouterConfig struct {
	ServiceName    string
	RateLimitRPS   int
	RateLimitBurst int
	MaxConcurrent  int
	ShedTimeout    time.Duration
}

type Router struct {
	searcher  ports.CaseSearcher
	reader    ports.CaseReader
	exporter  ports.CaseExporter
	metrics   *metrics.HTTPServerMetrics
	validator *RequestValidator
	cfg       RouterConfig
}

func NewRouter(
	searcher ports.CaseSearcher,
	reader ports.CaseReader,
	exporter ports.CaseExporter,
	serverMetrics *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "api"
	}
	if cfg.ShedTimeout <= 0 {
		cfg.ShedTimeout = 100 * time.Millisecond
	}
	return &Router{
		searcher: searcher,
		reader:   reader,
		exporter: exporter,
		metrics:  serverMetrics,
		cfg:      cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/v1/search", rt.search)
	mux.HandleFunc("/api/v1/courts", rt.courts)
	mux.HandleFunc("/api/v1/cases/", rt.caseSubtree)
	mux.HandleFunc("/api/v1/export/", rt.export)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.validator != nil {
		handler = rt.validator.Middleware(handler)
	}
	if rt.cfg.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, rt.cfg.ShedTimeout)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, rt.onRateLimited)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

// WithValidator enables OpenAPI request validation in front of the mux.
func (rt *Router) WithValidator(v *RequestValidator) *Router {
	rt.validator = v
	return rt
}

func (rt *Router) onRateLimited() {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited(rt.cfg.ServiceName)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()
	res, err := rt.searcher.Search(r.Context(), searchRequestFromQuery(r))
	if rt.metrics != nil {
		total := 0
		if res != nil {
			total = res.Total
		}
		rt.metrics.RecordSearch(rt.cfg.ServiceName, total, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) courts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	courts, err := rt.reader.Courts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courts": courts})
}

// caseSubtree serves /api/v1/cases/{id} and /api/v1/cases/{id}/citations.
func (rt *Router) caseSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/cases/")
	id, tail, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "case id is required"})
		return
	}

	switch tail {
	case "":
		doc, err := rt.reader.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case "citations":
		citations, err := rt.reader.Citations(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, citations)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	format := strings.TrimPrefix(r.URL.Path, "/api/v1/export/")
	req := searchRequestFromQuery(r)
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	var (
		data        []byte
		count       int
		err         error
		contentType string
	)
	switch format {
	case "csv":
		data, count, err = rt.exporter.ExportCSV(r.Context(), req, limit)
		contentType = "text/csv; charset=utf-8"
	case "jsonl":
		data, count, err = rt.exporter.ExportJSONL(r.Context(), req, limit)
		contentType = "application/x-ndjson"
	case "xlsx":
		data, count, err = rt.exporter.ExportXLSX(r.Context(), req, limit)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown export format"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordExport(rt.cfg.ServiceName, format, count)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="cases.`+format+`"`)
	w.Header().Set("X-Export-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// searchRequestFromQuery maps query parameters to the raw request without
// validating them; validation belongs to the core.
func searchRequestFromQuery(r *http.Request) ports.RawSearchRequest {
	q := r.URL.Query()
	return ports.RawSearchRequest{
		Text:      q.Get("q"),
		Court:     q.Get("court"),
		Year:      q.Get("year"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		Page:      q.Get("page"),
		PerPage:   q.Get("per_page"),
		Highlight: q.Get("highlight") != "false",
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing left to signal to the client.
		return
	}
}
