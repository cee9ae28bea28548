package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/db"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"
)

// buildHashFields flattens a chunk and its embedding into HSET fields.
// Metadata keys are persisted verbatim as the index schema's field names.
func buildHashFields(chunk *domain.DocumentChunk, embedding []float32) map[string]string {
	m := chunk.Metadata
	return map[string]string{
		"__content":    chunk.Text,
		"__vector":     vectorToBytes(embedding),
		"place":        m.Place,
		"source":       m.Source.String(),
		"section":      m.Section.String(),
		"url":          m.URL,
		"chunk_index":  strconv.Itoa(m.ChunkIndex),
		"total_chunks": strconv.Itoa(m.TotalChunks),
	}
}

// parseEntry converts a search hit back into a retrieval result. A hit with
// corrupt numeric metadata is reported so the caller can drop it.
func parseEntry(entry db.SearchEntry) (domain.RetrievalResult, error) {
	f := entry.Fields

	sec, ok := section.Parse(f["section"])
	if !ok {
		sec = section.Other
	}
	chunkIndex, err := strconv.Atoi(f["chunk_index"])
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("parse chunk_index %q: %w", f["chunk_index"], err)
	}
	totalChunks, err := strconv.Atoi(f["total_chunks"])
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("parse total_chunks %q: %w", f["total_chunks"], err)
	}

	return domain.RetrievalResult{
		Text: f["__content"],
		Metadata: domain.ChunkMetadata{
			Place:       f["place"],
			Source:      domain.Source(f["source"]),
			Section:     sec,
			URL:         f["url"],
			ChunkIndex:  chunkIndex,
			TotalChunks: totalChunks,
		},
		Distance: entry.Distance,
	}, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
