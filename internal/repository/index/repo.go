// Package index is the store adapter for the chunk index: it owns the
// persisted document shape, identifier generation, and the KNN query
// contract.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/db"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "chunk:"
	indexName = domain.KeyPrefix + "chunks:idx"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW build parameters for the vector field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements chunk persistence and similarity queries over the db facade.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
	newRunTag func() string
}

// New creates an index repository for vectors of the given dimensionality.
func New(s store, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		vectorDim: vectorDim,
		newRunTag: func() string { return uuid.NewString() },
	}
}

// WithHNSW configures HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the FT index if it does not exist yet. Called once at
// process start.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("%w: check index: %w", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "place", Type: db.IndexFieldTag},
			{Name: "source", Type: db.IndexFieldTag},
			{Name: "section", Type: db.IndexFieldTag},
			{Name: "vector", Type: db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("%w: create index: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Insert stores chunks with their embeddings. The two sequences must be
// parallel; a length mismatch rejects the whole call with no partial
// insert. Identifiers are derived from (place, source, section, chunkIndex)
// plus a per-call run tag, so re-ingesting the same content produces new
// entries rather than overwriting prior ones.
func (r *Repo) Insert(ctx context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf(
			"%w: %d chunks vs %d embeddings",
			domain.ErrLengthMismatch, len(chunks), len(embeddings),
		)
	}
	if len(chunks) == 0 {
		return nil
	}

	for i, emb := range embeddings {
		if len(emb) != r.vectorDim {
			return fmt.Errorf(
				"%w: embedding %d has %d dimensions, index expects %d",
				domain.ErrLengthMismatch, i, len(emb), r.vectorDim,
			)
		}
	}

	runTag := r.newRunTag()
	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		items[i] = db.HashSetItem{
			Key:    chunkKey(&chunks[i].Metadata, runTag),
			Fields: buildHashFields(&chunks[i], embeddings[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: insert chunks: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Query returns up to limit chunks nearest to the query vector, ascending
// by distance, restricted by the conjunctive metadata filters. No match is
// an empty slice, not an error.
func (r *Repo) Query(
	ctx context.Context, vector []float32, filters domain.Filters, limit int,
) ([]domain.RetrievalResult, error) {
	if len(vector) != r.vectorDim {
		return nil, fmt.Errorf(
			"%w: query vector has %d dimensions, index expects %d",
			domain.ErrLengthMismatch, len(vector), r.vectorDim,
		)
	}

	q := &db.KNNQuery{
		IndexName: indexName,
		Filters:   filters.Conditions(),
		Vector:    vector,
		K:         limit,
		ReturnFields: []string{
			"__content", "place", "source", "section", "url", "chunk_index", "total_chunks",
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrStoreUnavailable, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	results := make([]domain.RetrievalResult, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		res, err := parseEntry(entry)
		if err != nil {
			// Corrupt hit, drop it.
			continue
		}
		results = append(results, res)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func chunkKey(m *domain.ChunkMetadata, runTag string) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%s", keyPrefix, m.Place, m.Source, m.Section, m.ChunkIndex, runTag)
}
