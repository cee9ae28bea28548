package domain

import "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"

// ChunkMetadata is the citation provenance attached to every stored chunk.
type ChunkMetadata struct {
	Place       string
	Source      Source
	Section     section.Section
	URL         string
	ChunkIndex  int
	TotalChunks int
}

// DocumentChunk is the atomic unit stored and retrieved.
// Invariant: 0 <= ChunkIndex < TotalChunks, and chunks from the same
// (place, source, section) form a gap-free sequence.
type DocumentChunk struct {
	Text     string
	Metadata ChunkMetadata
}

// RetrievalResult is a single similarity hit. Ephemeral, never persisted.
// Distance is non-negative; smaller means more similar.
type RetrievalResult struct {
	Text     string
	Metadata ChunkMetadata
	Distance float64
}
