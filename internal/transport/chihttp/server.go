// Package chihttp exposes the ingestion and retrieval services over HTTP.
package chihttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"
	logpkg "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/logger"
	ingestuc "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/usecase/ingest"
	queryuc "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/usecase/query"
)

const maxIngestPairs = 100

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the ingest and query services.
type Server struct {
	ingest        *ingestuc.Service
	query         *queryuc.Service
	store         Pinger
	embedder      domain.HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	query *queryuc.Service,
	store Pinger,
	embedder domain.HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:   ingest,
		query:    query,
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrLengthMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrPageNotFound, http.StatusNotFound, codePageNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
	}
	return s
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/ingest", s.Ingest)
	r.Post("/v1/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type ingestPairRequest struct {
	Place  string `json:"place"`
	Source string `json:"source"`
}

type ingestRequest struct {
	Pairs []ingestPairRequest `json:"pairs"`
}

type ingestResultItem struct {
	Place             string `json:"place"`
	Source            string `json:"source"`
	SectionsProcessed int    `json:"sections_processed"`
	ChunksCreated     int    `json:"chunks_created"`
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
}

type ingestResponse struct {
	Items     []ingestResultItem `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// Ingest handles POST /v1/ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Pairs) == 0 || len(req.Pairs) > maxIngestPairs {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"pairs count must be between 1 and 100")
		return
	}

	pairs := make([]ingestuc.Pair, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		src, err := domain.ParseSource(p.Source)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		if p.Place == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "place is required")
			return
		}
		pairs = append(pairs, ingestuc.Pair{Place: p.Place, Source: src})
	}

	results := s.ingest.IngestAll(r.Context(), pairs)

	succeeded, failed := 0, 0
	items := make([]ingestResultItem, len(results))
	for i, res := range results {
		items[i] = ingestResultItem{
			Place:             res.Place(),
			Source:            res.Source().String(),
			SectionsProcessed: res.SectionsProcessed(),
			ChunksCreated:     res.ChunksCreated(),
			Success:           res.Success(),
			Error:             res.Err(),
		}
		if res.Success() {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

type searchRequest struct {
	Text    string    `json:"text,omitempty"`
	Vector  []float32 `json:"vector,omitempty"`
	Place   string    `json:"place,omitempty"`
	Section string    `json:"section,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

type searchResultItem struct {
	Text        string  `json:"text"`
	Place       string  `json:"place"`
	Source      string  `json:"source"`
	Section     string  `json:"section"`
	URL         string  `json:"url,omitempty"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Distance    float64 `json:"distance"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters := domain.Filters{Place: req.Place}
	if req.Section != "" {
		sec, ok := section.Parse(req.Section)
		if !ok {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				"unknown section: "+req.Section)
			return
		}
		filters.Section = sec
	}

	results, err := s.query.Retrieve(r.Context(), queryuc.Request{
		Text:    req.Text,
		Vector:  req.Vector,
		Filters: filters,
		Limit:   req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = searchResultItem{
			Text:        res.Text,
			Place:       res.Metadata.Place,
			Source:      res.Metadata.Source.String(),
			Section:     res.Metadata.Section.String(),
			URL:         res.Metadata.URL,
			ChunkIndex:  res.Metadata.ChunkIndex,
			TotalChunks: res.Metadata.TotalChunks,
			Distance:    res.Distance,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"store":     "ok",
		"embedding": "ok",
	}
	healthy := true

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "unavailable"
		healthy = false
	}
	if s.embedder != nil {
		if err := s.embedder.HealthCheck(ctx); err != nil {
			checks["embedding"] = "unavailable"
			healthy = false
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		s.logger.Warn("health check degraded", zap.Any("checks", checks))
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codePageNotFound           = "page_not_found"
	codeStoreUnavailable       = "store_unavailable"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidFilter,
		domain.ErrLengthMismatch,
		domain.ErrPageNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingProviderError,
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

// handleDomainError logs through the request-scoped logger installed by the
// wide-event middleware, so error lines carry the request id.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
