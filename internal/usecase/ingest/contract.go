package ingest

import (
	"context"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
)

// PageFetcher retrieves a guide page for a place from a source.
type PageFetcher interface {
	FetchPage(ctx context.Context, place string, source domain.Source) (domain.ParsedPage, error)
}

// Chunker splits a parsed page into ordered document chunks.
type Chunker interface {
	ChunkPage(page domain.ParsedPage) []domain.DocumentChunk
}

// DocumentWriter persists chunks with their embeddings.
type DocumentWriter interface {
	Insert(ctx context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error
}
