// Package chihttp is the HTTP adapter over the query engine: hand-routed
// chi endpoints, sentinel-to-status error mapping, and bearer-key auth.
package chihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slidedex/internal/cache"
	"github.com/kailas-cloud/slidedex/internal/domain"
	domquery "github.com/kailas-cloud/slidedex/internal/domain/query"
	"github.com/kailas-cloud/slidedex/internal/domain/sliderange"
	healthuc "github.com/kailas-cloud/slidedex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/slidedex/internal/usecase/query"
)

// Error response codes.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryRequest is the wire shape of POST /v1/decks/query.
type QueryRequest struct {
	Path         string          `json:"path"`
	Filters      json.RawMessage `json:"filters,omitempty"`
	ReturnFields []string        `json:"return_fields,omitempty"`
	Limit        int             `json:"limit,omitempty"`
}

// QueryResponse is the wire shape of a query result list.
type QueryResponse struct {
	Items []domquery.Result `json:"items"`
	Total int               `json:"total"`
	Limit int               `json:"limit"`
}

// ResolveRequest is the wire shape of POST /v1/decks/resolve.
type ResolveRequest struct {
	Path         string          `json:"path"`
	SlideNumbers sliderange.Spec `json:"slide_numbers"`
}

// ResolveResponse is the wire shape of a resolved slide-number list.
type ResolveResponse struct {
	SlideNumbers []int `json:"slide_numbers"`
	Total        int   `json:"total"`
}

// SlideInfoRequest is the wire shape of POST /v1/decks/slide.
type SlideInfoRequest struct {
	Path        string   `json:"path"`
	SlideNumber int      `json:"slide_number"`
	Attributes  []string `json:"attributes,omitempty"`
}

// CacheStatsResponse is the wire shape of GET /v1/cache/stats.
type CacheStatsResponse struct {
	DeckCache cache.Stats `json:"deck_cache"`
}

// DeckCache is the cache maintenance surface of the deck-file extractor.
type DeckCache interface {
	CacheStats() cache.Stats
	CleanupCache() int
	ClearCache()
}

// Limits bound the per-query result limit.
type Limits struct {
	Default int
	Max     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	queries       *queryuc.Service
	decks         DeckCache
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	queries *queryuc.Service,
	decks DeckCache,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		queries: queries,
		decks:   decks,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidSyntax, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrOutOfRange, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRange, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilterField, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRegex, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownAttribute, http.StatusBadRequest, CodeValidationFailed),
	}
	return s
}

// Routes registers every endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/decks/query", s.QueryDecks)
	r.Post("/v1/decks/resolve", s.ResolveSlides)
	r.Post("/v1/decks/slide", s.SlideInfo)
	r.Get("/v1/cache/stats", s.CacheStats)
	r.Post("/v1/cache/cleanup", s.CacheCleanup)
	r.Delete("/v1/cache", s.CacheClear)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// QueryDecks handles POST /v1/decks/query.
func (s *Server) QueryDecks(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "path is required")
		return
	}

	limit := req.Limit
	switch {
	case limit < 0:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be non-negative")
		return
	case limit == 0:
		limit = s.limits.Default
	case limit > s.limits.Max:
		limit = s.limits.Max
	}

	results, err := s.queries.Query(r.Context(), req.Path, req.Filters, req.ReturnFields, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Items: results,
		Total: len(results),
		Limit: limit,
	})
}

// ResolveSlides handles POST /v1/decks/resolve.
func (s *Server) ResolveSlides(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "path is required")
		return
	}

	nums, err := s.queries.ResolveSlideNumbers(r.Context(), req.Path, req.SlideNumbers)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{
		SlideNumbers: nums,
		Total:        len(nums),
	})
}

// SlideInfo handles POST /v1/decks/slide.
func (s *Server) SlideInfo(w http.ResponseWriter, r *http.Request) {
	var req SlideInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "path is required")
		return
	}
	if req.SlideNumber < 1 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "slide_number must be positive")
		return
	}

	info, err := s.queries.SlideInfo(r.Context(), req.Path, req.SlideNumber, req.Attributes)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// CacheStats handles GET /v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CacheStatsResponse{DeckCache: s.decks.CacheStats()})
}

// CacheCleanup handles POST /v1/cache/cleanup.
func (s *Server) CacheCleanup(w http.ResponseWriter, _ *http.Request) {
	removed := s.decks.CleanupCache()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// CacheClear handles DELETE /v1/cache. With a path query parameter only
// that deck's engine entry is dropped; without one both cache layers are
// emptied.
func (s *Server) CacheClear(w http.ResponseWriter, r *http.Request) {
	if path := r.URL.Query().Get("path"); path != "" {
		invalidated := s.queries.Invalidate(path)
		writeJSON(w, http.StatusOK, map[string]bool{"invalidated": invalidated})
		return
	}

	s.decks.ClearCache()
	s.queries.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidSyntax,
		domain.ErrOutOfRange,
		domain.ErrInvalidRange,
		domain.ErrInvalidFilterField,
		domain.ErrInvalidRegex,
		domain.ErrUnknownAttribute,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
