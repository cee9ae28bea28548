// Package ingest orchestrates the guide ingestion pipeline:
// fetch page → chunk sections → batch embed → persist.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/metrics"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 100
)

// Pair identifies one unit of ingestion work.
type Pair struct {
	Place  string
	Source domain.Source
}

// Service runs the ingestion pipeline over a worker pool. Each
// (place, source) pair is independent: a failed pair yields a failure
// result and never aborts the run.
type Service struct {
	fetcher   PageFetcher
	chunker   Chunker
	embedder  domain.BatchEmbedder
	writer    DocumentWriter
	workers   int
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(
	fetcher PageFetcher,
	chunker Chunker,
	embedder domain.BatchEmbedder,
	writer DocumentWriter,
	workers int,
	batchSize int,
	logger *zap.Logger,
) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		chunker:   chunker,
		embedder:  embedder,
		writer:    writer,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestAll processes every pair and returns one result per pair, in
// input order.
func (s *Service) IngestAll(ctx context.Context, pairs []Pair) []domain.IngestionResult {
	results := make([]domain.IngestionResult, len(pairs))

	type job struct {
		idx  int
		pair Pair
	}
	jobs := make(chan job, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = s.IngestPair(ctx, j.pair.Place, j.pair.Source)
			}
		}()
	}

	for i, p := range pairs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			for k := i; k < len(pairs); k++ {
				if results[k] == (domain.IngestionResult{}) {
					results[k] = domain.NewFailure(pairs[k].Place, pairs[k].Source, ctx.Err())
				}
			}
			return results
		case jobs <- job{idx: i, pair: p}:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// IngestPair runs the full pipeline for a single (place, source) pair.
// Every failure is captured in the returned result.
func (s *Service) IngestPair(ctx context.Context, place string, source domain.Source) domain.IngestionResult {
	start := time.Now()
	defer func() {
		metrics.IngestPairDuration.WithLabelValues(source.String()).Observe(time.Since(start).Seconds())
	}()

	res := s.ingest(ctx, place, source)
	if res.Success() {
		metrics.IngestPairsTotal.WithLabelValues("success").Inc()
	} else {
		metrics.IngestPairsTotal.WithLabelValues("failure").Inc()
		s.logger.Warn("Ingestion failed",
			zap.String("place", place),
			zap.String("source", source.String()),
			zap.String("error", res.Err()),
		)
	}
	return res
}

func (s *Service) ingest(ctx context.Context, place string, source domain.Source) domain.IngestionResult {
	page, err := s.fetcher.FetchPage(ctx, place, source)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPageNotFound):
			metrics.PagesFetchedTotal.WithLabelValues(source.String(), "not_found").Inc()
		default:
			metrics.PagesFetchedTotal.WithLabelValues(source.String(), "error").Inc()
		}
		return domain.NewFailure(place, source, err)
	}
	metrics.PagesFetchedTotal.WithLabelValues(source.String(), "ok").Inc()

	chunks := s.chunker.ChunkPage(page)
	if len(chunks) == 0 {
		s.logger.Info("No target sections on page",
			zap.String("place", place),
			zap.String("source", source.String()),
		)
		return domain.NewSuccess(place, source, 0, 0)
	}

	sections := make(map[string]struct{})
	for _, c := range chunks {
		sections[c.Metadata.Section.String()] = struct{}{}
		metrics.ChunksCreatedTotal.WithLabelValues(c.Metadata.Section.String()).Inc()
	}

	embeddings, err := s.embedAll(ctx, chunks)
	if err != nil {
		return domain.NewFailure(place, source, err)
	}

	if err := s.writer.Insert(ctx, chunks, embeddings); err != nil {
		return domain.NewFailure(place, source, err)
	}

	s.logger.Info("Ingested page",
		zap.String("place", place),
		zap.String("source", source.String()),
		zap.Int("sections", len(sections)),
		zap.Int("chunks", len(chunks)),
	)
	return domain.NewSuccess(place, source, len(sections), len(chunks))
}

// embedAll embeds chunk texts in batches of batchSize, preserving chunk
// order across batch boundaries.
func (s *Service) embedAll(ctx context.Context, chunks []domain.DocumentChunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))

	for i := 0; i < len(chunks); i += s.batchSize {
		end := i + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Text)
		}

		batch, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch.Embeddings) != len(texts) {
			return nil, domain.ErrLengthMismatch
		}
		embeddings = append(embeddings, batch.Embeddings...)
	}

	return embeddings, nil
}
