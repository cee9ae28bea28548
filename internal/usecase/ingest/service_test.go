package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/chunker"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"
)

type mockFetcher struct {
	fetchFunc func(ctx context.Context, place string, source domain.Source) (domain.ParsedPage, error)
}

func (m *mockFetcher) FetchPage(ctx context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
	return m.fetchFunc(ctx, place, source)
}

type mockChunker struct {
	chunkFunc func(page domain.ParsedPage) []domain.DocumentChunk
}

func (m *mockChunker) ChunkPage(page domain.ParsedPage) []domain.DocumentChunk {
	return m.chunkFunc(page)
}

type mockEmbedder struct {
	calls     atomic.Int64
	embedFunc func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls.Add(1)
	return m.embedFunc(ctx, texts)
}

type mockWriter struct {
	insertFunc func(ctx context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error
}

func (m *mockWriter) Insert(ctx context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
	return m.insertFunc(ctx, chunks, embeddings)
}

func echoEmbedder() *mockEmbedder {
	return &mockEmbedder{
		embedFunc: func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
			embs := make([][]float32, len(texts))
			for i := range texts {
				embs[i] = []float32{0.1, 0.2, 0.3}
			}
			return domain.BatchEmbeddingResult{Embeddings: embs}, nil
		},
	}
}

func chunksFor(place string, source domain.Source, sec section.Section, n int) []domain.DocumentChunk {
	out := make([]domain.DocumentChunk, n)
	for i := range out {
		out[i] = domain.DocumentChunk{
			Text: fmt.Sprintf("%s %s chunk %d", place, sec, i),
			Metadata: domain.ChunkMetadata{
				Place:       place,
				Source:      source,
				Section:     sec,
				ChunkIndex:  i,
				TotalChunks: n,
			},
		}
	}
	return out
}

func TestIngestPairSuccess(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{
				Place:  place,
				Source: source,
				Sections: map[string]string{
					"Eat":        "Cheap and tasty street food everywhere.",
					"Stay safe":  "Watch for pickpockets near the station.",
					"Nightlife":  "Bars close at two.",
				},
			}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(page domain.ParsedPage) []domain.DocumentChunk {
			var out []domain.DocumentChunk
			out = append(out, chunksFor(page.Place, page.Source, section.Eat, 2)...)
			out = append(out, chunksFor(page.Place, page.Source, section.Safety, 1)...)
			return out
		},
	}

	var gotChunks []domain.DocumentChunk
	var gotEmbeddings [][]float32
	writer := &mockWriter{
		insertFunc: func(_ context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
			gotChunks = chunks
			gotEmbeddings = embeddings
			return nil
		},
	}

	svc := New(fetcher, chunker, echoEmbedder(), writer, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Testville", domain.SourceWikivoyage)

	if !res.Success() {
		t.Fatalf("expected success, got error: %s", res.Err())
	}
	if res.SectionsProcessed() != 2 {
		t.Errorf("sections processed = %d, want 2", res.SectionsProcessed())
	}
	if res.ChunksCreated() != 3 {
		t.Errorf("chunks created = %d, want 3", res.ChunksCreated())
	}
	if len(gotChunks) != 3 || len(gotEmbeddings) != 3 {
		t.Errorf("writer got %d chunks and %d embeddings, want 3 and 3", len(gotChunks), len(gotEmbeddings))
	}
}

func TestIngestPairPageNotFound(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, _ string, _ domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{}, domain.ErrPageNotFound
		},
	}

	svc := New(fetcher, nil, nil, nil, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Nowhere", domain.SourceWikipedia)

	if res.Success() {
		t.Fatal("expected failure for missing page")
	}
	if !strings.Contains(res.Err(), "page not found") {
		t.Errorf("error = %q, want page not found", res.Err())
	}
}

func TestIngestPairNoTargetSections(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{Place: place, Source: source, Sections: map[string]string{"History": "Long ago."}}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(domain.ParsedPage) []domain.DocumentChunk { return nil },
	}

	svc := New(fetcher, chunker, nil, nil, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Dullton", domain.SourceWikivoyage)

	if !res.Success() {
		t.Fatalf("expected success, got error: %s", res.Err())
	}
	if res.SectionsProcessed() != 0 || res.ChunksCreated() != 0 {
		t.Errorf("got %d sections / %d chunks, want 0 / 0", res.SectionsProcessed(), res.ChunksCreated())
	}
}

func TestIngestPairStoreFailure(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{Place: place, Source: source, Sections: map[string]string{"Eat": "food"}}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(page domain.ParsedPage) []domain.DocumentChunk {
			return chunksFor(page.Place, page.Source, section.Eat, 1)
		},
	}
	writer := &mockWriter{
		insertFunc: func(context.Context, []domain.DocumentChunk, [][]float32) error {
			return fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
		},
	}

	svc := New(fetcher, chunker, echoEmbedder(), writer, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Testville", domain.SourceWikivoyage)

	if res.Success() {
		t.Fatal("expected failure when the store rejects the write")
	}
	if !strings.Contains(res.Err(), "store unavailable") {
		t.Errorf("error = %q, want store unavailable", res.Err())
	}
}

func TestIngestPairEmbedLengthMismatch(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{Place: place, Source: source, Sections: map[string]string{"Eat": "food"}}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(page domain.ParsedPage) []domain.DocumentChunk {
			return chunksFor(page.Place, page.Source, section.Eat, 2)
		},
	}
	embedder := &mockEmbedder{
		embedFunc: func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbeddingResult{Embeddings: [][]float32{{0.1}}}, nil
		},
	}

	svc := New(fetcher, chunker, embedder, nil, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Testville", domain.SourceWikivoyage)

	if res.Success() {
		t.Fatal("expected failure on embedding count mismatch")
	}
	if !errorsIsText(res.Err(), domain.ErrLengthMismatch) {
		t.Errorf("error = %q, want length mismatch", res.Err())
	}
}

func TestIngestPairBatchesLargePages(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{Place: place, Source: source, Sections: map[string]string{"Eat": "food"}}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(page domain.ParsedPage) []domain.DocumentChunk {
			return chunksFor(page.Place, page.Source, section.Eat, 7)
		},
	}
	embedder := echoEmbedder()
	writer := &mockWriter{
		insertFunc: func(_ context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
			if len(chunks) != len(embeddings) {
				return domain.ErrLengthMismatch
			}
			return nil
		},
	}

	svc := New(fetcher, chunker, embedder, writer, 1, 3, nil)
	res := svc.IngestPair(context.Background(), "Testville", domain.SourceWikivoyage)

	if !res.Success() {
		t.Fatalf("expected success, got error: %s", res.Err())
	}
	if got := embedder.calls.Load(); got != 3 {
		t.Errorf("embedder called %d times, want 3 batches for 7 chunks of size 3", got)
	}
}

func TestIngestAllReportsEveryPair(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			if place == "Ghosttown" {
				return domain.ParsedPage{}, domain.ErrPageNotFound
			}
			return domain.ParsedPage{Place: place, Source: source, Sections: map[string]string{"Eat": "food"}}, nil
		},
	}
	chunker := &mockChunker{
		chunkFunc: func(page domain.ParsedPage) []domain.DocumentChunk {
			return chunksFor(page.Place, page.Source, section.Eat, 1)
		},
	}
	writer := &mockWriter{
		insertFunc: func(context.Context, []domain.DocumentChunk, [][]float32) error { return nil },
	}

	pairs := []Pair{
		{Place: "Alpha", Source: domain.SourceWikivoyage},
		{Place: "Ghosttown", Source: domain.SourceWikivoyage},
		{Place: "Beta", Source: domain.SourceWikipedia},
	}

	svc := New(fetcher, chunker, echoEmbedder(), writer, 2, 100, nil)
	results := svc.IngestAll(context.Background(), pairs)

	if len(results) != len(pairs) {
		t.Fatalf("got %d results, want %d", len(results), len(pairs))
	}
	for i, p := range pairs {
		if results[i].Place() != p.Place {
			t.Errorf("result %d place = %q, want %q", i, results[i].Place(), p.Place)
		}
	}
	if results[1].Success() {
		t.Error("expected failure for Ghosttown")
	}
	if !results[0].Success() || !results[2].Success() {
		t.Error("sibling pairs must not be affected by one failure")
	}
}

func TestIngestAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{
		fetchFunc: func(ctx context.Context, _ string, _ domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{}, ctx.Err()
		},
	}

	svc := New(fetcher, nil, nil, nil, 1, 100, nil)
	results := svc.IngestAll(ctx, []Pair{
		{Place: "Alpha", Source: domain.SourceWikivoyage},
		{Place: "Beta", Source: domain.SourceWikivoyage},
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Success() {
			t.Errorf("result %d: expected failure after cancellation", i)
		}
	}
}

// Runs the full pipeline over a real chunker. A long Eat section must
// produce several windows while a short non-target Sleep section
// contributes nothing.
func TestIngestPairEndToEnd(t *testing.T) {
	eat := strings.Repeat("Street stalls serve grilled fish and cold noodles until late. ", 82)
	fetcher := &mockFetcher{
		fetchFunc: func(_ context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
			return domain.ParsedPage{
				Place:  place,
				Source: source,
				URL:    "https://en.wikivoyage.org/wiki/Testville",
				Sections: map[string]string{
					"Eat":   eat,
					"Sleep": "Plenty of cheap hostels downtown.",
				},
			}, nil
		},
	}

	var gotChunks []domain.DocumentChunk
	writer := &mockWriter{
		insertFunc: func(_ context.Context, chunks []domain.DocumentChunk, _ [][]float32) error {
			gotChunks = chunks
			return nil
		},
	}

	svc := New(fetcher, chunker.New(2000, 200), echoEmbedder(), writer, 1, 100, nil)
	res := svc.IngestPair(context.Background(), "Testville", domain.SourceWikivoyage)

	if !res.Success() {
		t.Fatalf("expected success, got error: %s", res.Err())
	}
	if res.SectionsProcessed() != 1 {
		t.Errorf("sections processed = %d, want 1", res.SectionsProcessed())
	}
	if res.ChunksCreated() < 2 {
		t.Errorf("chunks created = %d, want at least 2", res.ChunksCreated())
	}
	for _, c := range gotChunks {
		if c.Metadata.Section != section.Eat {
			t.Errorf("chunk section = %q, only eat chunks expected", c.Metadata.Section)
		}
		if len(c.Text) > 2000 {
			t.Errorf("chunk length %d exceeds window size", len(c.Text))
		}
	}
}

func errorsIsText(msg string, sentinel error) bool {
	return strings.Contains(msg, sentinel.Error())
}
