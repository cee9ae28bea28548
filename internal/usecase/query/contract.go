package query

import (
	"context"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
)

// ChunkSearcher runs KNN queries against the chunk index.
type ChunkSearcher interface {
	Query(ctx context.Context, vector []float32, filters domain.Filters, limit int) ([]domain.RetrievalResult, error)
}
