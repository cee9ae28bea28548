// Package query answers retrieval requests: embed the query text and
// search the chunk index with optional metadata filters.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
)

const (
	// DefaultLimit is used when a request does not specify one.
	DefaultLimit = 5
	maxLimit     = 50
)

// Request describes one retrieval query.
type Request struct {
	Text    string
	Vector  []float32
	Filters domain.Filters
	Limit   int
}

// Service embeds query text and delegates to the chunk index.
type Service struct {
	embedder domain.Embedder
	searcher ChunkSearcher
	logger   *zap.Logger
}

// New creates a query service.
func New(embedder domain.Embedder, searcher ChunkSearcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, searcher: searcher, logger: logger}
}

// Retrieve returns up to req.Limit chunks ordered by ascending distance.
// Exactly one of Text or Vector must be set.
func (s *Service) Retrieve(ctx context.Context, req Request) ([]domain.RetrievalResult, error) {
	vector, err := s.resolveVector(ctx, req)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	results, err := s.searcher.Query(ctx, vector, req.Filters, limit)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	s.logger.Debug("Retrieved chunks",
		zap.Int("limit", limit),
		zap.Int("results", len(results)),
		zap.String("place", req.Filters.Place),
		zap.String("section", req.Filters.Section.String()),
	)
	return results, nil
}

func (s *Service) resolveVector(ctx context.Context, req Request) ([]float32, error) {
	hasText := strings.TrimSpace(req.Text) != ""
	hasVector := len(req.Vector) > 0

	switch {
	case hasText && hasVector:
		return nil, fmt.Errorf("%w: provide either text or vector, not both", domain.ErrInvalidFilter)
	case hasVector:
		return req.Vector, nil
	case hasText:
		res, err := s.embedder.Embed(ctx, req.Text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return res.Embedding, nil
	default:
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidFilter)
	}
}
