package query

import (
	"context"
	"errors"
	"testing"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"
)

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFunc(ctx, text)
}

type mockSearcher struct {
	gotVector  []float32
	gotFilters domain.Filters
	gotLimit   int
	results    []domain.RetrievalResult
	err        error
}

func (m *mockSearcher) Query(_ context.Context, vector []float32, filters domain.Filters, limit int) ([]domain.RetrievalResult, error) {
	m.gotVector = vector
	m.gotFilters = filters
	m.gotLimit = limit
	return m.results, m.err
}

func TestRetrieveEmbedsText(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(_ context.Context, text string) (domain.EmbeddingResult, error) {
			if text != "is tap water safe" {
				t.Errorf("embedded text = %q", text)
			}
			return domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}}, nil
		},
	}
	searcher := &mockSearcher{
		results: []domain.RetrievalResult{
			{Text: "Tap water is drinkable.", Distance: 0.12},
		},
	}

	svc := New(embedder, searcher, nil)
	results, err := svc.Retrieve(context.Background(), Request{
		Text:    "is tap water safe",
		Filters: domain.Filters{Place: "Lisbon", Section: section.Safety},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if searcher.gotLimit != DefaultLimit {
		t.Errorf("limit = %d, want default %d", searcher.gotLimit, DefaultLimit)
	}
	if searcher.gotFilters.Place != "Lisbon" || searcher.gotFilters.Section != section.Safety {
		t.Errorf("filters not forwarded: %+v", searcher.gotFilters)
	}
	if len(searcher.gotVector) != 2 {
		t.Errorf("vector not forwarded, got %v", searcher.gotVector)
	}
}

func TestRetrieveVectorPassthrough(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
			t.Fatal("embedder must not be called for vector queries")
			return domain.EmbeddingResult{}, nil
		},
	}
	searcher := &mockSearcher{results: []domain.RetrievalResult{}}

	svc := New(embedder, searcher, nil)
	_, err := svc.Retrieve(context.Background(), Request{
		Vector: []float32{0.1, 0.2, 0.3},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if searcher.gotLimit != 10 {
		t.Errorf("limit = %d, want 10", searcher.gotLimit)
	}
}

func TestRetrieveEmptyRequest(t *testing.T) {
	svc := New(&mockEmbedder{}, &mockSearcher{}, nil)
	_, err := svc.Retrieve(context.Background(), Request{})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestRetrieveTextAndVectorRejected(t *testing.T) {
	svc := New(&mockEmbedder{}, &mockSearcher{}, nil)
	_, err := svc.Retrieve(context.Background(), Request{
		Text:   "food",
		Vector: []float32{0.1},
	})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestRetrieveLimitCapped(t *testing.T) {
	searcher := &mockSearcher{results: []domain.RetrievalResult{}}
	svc := New(&mockEmbedder{}, searcher, nil)

	_, err := svc.Retrieve(context.Background(), Request{
		Vector: []float32{0.1},
		Limit:  500,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if searcher.gotLimit != maxLimit {
		t.Errorf("limit = %d, want cap %d", searcher.gotLimit, maxLimit)
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
		},
	}

	svc := New(embedder, &mockSearcher{}, nil)
	_, err := svc.Retrieve(context.Background(), Request{Text: "food"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestRetrieveStoreFailure(t *testing.T) {
	searcher := &mockSearcher{err: domain.ErrStoreUnavailable}

	svc := New(&mockEmbedder{}, searcher, nil)
	_, err := svc.Retrieve(context.Background(), Request{Vector: []float32{0.1}})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}
