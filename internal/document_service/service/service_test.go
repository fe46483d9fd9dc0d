package service

import (
	"context"
	"errors"
	"testing"

	"Athena_1.0/internal/database/milvus"
	"Athena_1.0/internal/models"
	"Athena_1.0/pkg/logger"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeIndex struct {
	upserts   int
	upsertErr error
	matches   []milvus.SearchMatch
}

func (f *fakeIndex) Upsert(context.Context, string, string, []float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, topK int) ([]milvus.SearchMatch, error) {
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

type fakeStore struct {
	inserts   int
	createErr error
}

func (f *fakeStore) Create(context.Context, *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.inserts++
	return nil
}

func (f *fakeStore) GetByID(context.Context, string) (*models.Document, error) {
	return nil, errors.New("not used")
}

func (f *fakeStore) ListRecent(context.Context, int) ([]models.Document, error) {
	return nil, nil
}

type fakeCache struct {
	entries map[string][]float32
	hits    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]float32)}
}

func (f *fakeCache) Get(_ context.Context, text string) ([]float32, bool) {
	vector, ok := f.entries[text]
	if ok {
		f.hits++
	}
	return vector, ok
}

func (f *fakeCache) Put(_ context.Context, text string, vector []float32) {
	f.puts++
	f.entries[text] = vector
}

func newService(embedder *fakeEmbedder, index *fakeIndex, store *fakeStore) *Service {
	return New(logger.New("test"), embedder, index, store, nil)
}

func TestCreateDocumentSequencing(t *testing.T) {
	t.Run("embedding failure writes nothing", func(t *testing.T) {
		index := &fakeIndex{}
		store := &fakeStore{}
		svc := newService(&fakeEmbedder{err: errors.New("down")}, index, store)

		_, err := svc.CreateDocument(context.Background(), "T", "body")
		if !errors.Is(err, ErrEmbeddingFailed) {
			t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
		}
		if index.upserts != 0 || store.inserts != 0 {
			t.Errorf("writes happened: upserts=%d inserts=%d", index.upserts, store.inserts)
		}
	})

	t.Run("empty vector is an embedding failure", func(t *testing.T) {
		svc := newService(&fakeEmbedder{vector: []float32{}}, &fakeIndex{}, &fakeStore{})

		_, err := svc.CreateDocument(context.Background(), "T", "body")
		if !errors.Is(err, ErrEmbeddingFailed) {
			t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
		}
	})

	t.Run("upsert failure prevents the insert", func(t *testing.T) {
		index := &fakeIndex{upsertErr: errors.New("milvus down")}
		store := &fakeStore{}
		svc := newService(&fakeEmbedder{vector: []float32{0.1}}, index, store)

		_, err := svc.CreateDocument(context.Background(), "T", "body")
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, ErrEmbeddingFailed) {
			t.Error("upsert failure must not masquerade as an embedding failure")
		}
		if store.inserts != 0 {
			t.Error("document row inserted without its vector")
		}
	})

	t.Run("insert failure surfaces after a successful upsert", func(t *testing.T) {
		index := &fakeIndex{}
		store := &fakeStore{createErr: errors.New("mysql down")}
		svc := newService(&fakeEmbedder{vector: []float32{0.1}}, index, store)

		_, err := svc.CreateDocument(context.Background(), "T", "body")
		if err == nil {
			t.Fatal("expected an error")
		}
		// The orphaned vector entry is the documented, accepted gap.
		if index.upserts != 1 {
			t.Errorf("upserts = %d, want 1", index.upserts)
		}
	})
}

func TestCreateDocumentAssignsIdentity(t *testing.T) {
	svc := newService(&fakeEmbedder{vector: []float32{0.1, 0.2}}, &fakeIndex{}, &fakeStore{})

	doc, err := svc.CreateDocument(context.Background(), "T", "body")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.ID == "" {
		t.Error("id was not assigned")
	}
	if doc.VectorID != doc.ID {
		t.Errorf("vector_id = %q, want the document id %q", doc.VectorID, doc.ID)
	}
	if doc.Created == 0 {
		t.Error("created timestamp was not assigned")
	}
}

func TestSearchDocumentsLimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, defaultSearchLimit},
		{"negative falls back to default", -3, defaultSearchLimit},
		{"within range", 5, 5},
		{"above cap", 100, maxSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTopK int
			index := &recordingIndex{topK: &gotTopK}
			svc := New(logger.New("test"), &fakeEmbedder{vector: []float32{0.1}}, index, &fakeStore{}, nil)

			if _, err := svc.SearchDocuments(context.Background(), "q", tt.limit); err != nil {
				t.Fatalf("SearchDocuments() error = %v", err)
			}
			if gotTopK != tt.want {
				t.Errorf("topK = %d, want %d", gotTopK, tt.want)
			}
		})
	}
}

type recordingIndex struct {
	topK *int
}

func (r *recordingIndex) Upsert(context.Context, string, string, []float32) error { return nil }

func (r *recordingIndex) Search(_ context.Context, _ []float32, topK int) ([]milvus.SearchMatch, error) {
	*r.topK = topK
	return nil, nil
}

func TestSearchDocumentsTitleFallback(t *testing.T) {
	index := &fakeIndex{matches: []milvus.SearchMatch{{ID: "a", Title: "", Score: 1.5}}}
	svc := newService(&fakeEmbedder{vector: []float32{0.1}}, index, &fakeStore{})

	resp, err := svc.SearchDocuments(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("SearchDocuments() error = %v", err)
	}
	if resp.Results[0].Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", resp.Results[0].Title)
	}
	if resp.Results[0].Similarity != 1.5 {
		t.Errorf("similarity = %v, want the raw score 1.5", resp.Results[0].Similarity)
	}
	if resp.Query != "q" {
		t.Errorf("query = %q, want q", resp.Query)
	}
}

func TestSearchDocumentsUsesEmbeddingCache(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	embCache := newFakeCache()
	svc := New(logger.New("test"), embedder, &fakeIndex{}, &fakeStore{}, embCache)

	ctx := context.Background()
	if _, err := svc.SearchDocuments(ctx, "repeated query", 5); err != nil {
		t.Fatalf("first search: %v", err)
	}
	if _, err := svc.SearchDocuments(ctx, "repeated query", 5); err != nil {
		t.Fatalf("second search: %v", err)
	}

	if embedder.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second search served from cache)", embedder.calls)
	}
	if embCache.hits != 1 || embCache.puts != 1 {
		t.Errorf("cache hits=%d puts=%d, want 1/1", embCache.hits, embCache.puts)
	}
}

func TestSearchDocumentsDoesNotCacheFailures(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("down")}
	embCache := newFakeCache()
	svc := New(logger.New("test"), embedder, &fakeIndex{}, &fakeStore{}, embCache)

	_, err := svc.SearchDocuments(context.Background(), "q", 5)
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
	if embCache.puts != 0 {
		t.Error("a failed embedding must not be cached")
	}
}
