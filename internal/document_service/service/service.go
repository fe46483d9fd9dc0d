package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Athena_1.0/internal/database/milvus"
	"Athena_1.0/internal/document_service/cache"
	"Athena_1.0/internal/models"
	"Athena_1.0/pkg/logger"

	"github.com/google/uuid"
)

const (
	// listWindow is the maximum number of documents the listing endpoint
	// returns; older documents fall out of the window.
	listWindow = 50

	// defaultSearchLimit is used when the caller does not request a limit.
	defaultSearchLimit = 10

	// maxSearchLimit is the hard upper bound on nearest-neighbor results,
	// enforced regardless of the requested limit.
	maxSearchLimit = 20
)

// ErrEmbeddingFailed 在 Embedding 提供商没有返回可用向量时返回。
// 这是一个独立于通用内部错误的、需要明确上报给调用方的失败类别。
var ErrEmbeddingFailed = errors.New("failed to generate embedding")

// Embedder generates a fixed-dimension vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores vectors keyed by document id and answers top-k
// similarity queries. Scores are passed through in the index's native
// metric, unmodified.
type VectorIndex interface {
	Upsert(ctx context.Context, id, title string, vector []float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]milvus.SearchMatch, error)
}

// DocumentStore persists and reads document rows.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListRecent(ctx context.Context, limit int) ([]models.Document, error)
}

// SearchResult is one ranked match in a search response.
type SearchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float32 `json:"similarity"`
}

// SearchResponse echoes the caller's query next to the ranked matches.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Service coordinates the embedding provider, the vector index and the
// relational store behind the document and search operations.
type Service struct {
	log      *logger.Logger
	embedder Embedder
	index    VectorIndex
	store    DocumentStore
	cache    cache.EmbeddingCache
}

// New creates a Service. cache may be nil, in which case query embeddings
// are regenerated on every search.
func New(log *logger.Logger, embedder Embedder, index VectorIndex, store DocumentStore, embCache cache.EmbeddingCache) *Service {
	return &Service{
		log:      log,
		embedder: embedder,
		index:    index,
		store:    store,
		cache:    embCache,
	}
}

// CreateDocument ingests one document: it embeds the content, upserts the
// vector entry and then inserts the relational row.
//
// The three calls are deliberately sequenced. The embedding is generated and
// validated before any persistent write, so a failed embedding never leaves
// an orphaned record. The vector upsert completes before the relational
// insert, so a document row is never visible without its vector. There is no
// cross-store transaction: if the insert fails after the upsert succeeded,
// an orphaned vector entry remains and is logged for later reconciliation.
func (s *Service) CreateDocument(ctx context.Context, title, content string) (*models.Document, error) {
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty vector", ErrEmbeddingFailed)
	}

	id := uuid.New().String()

	if err := s.index.Upsert(ctx, id, title, vector); err != nil {
		return nil, fmt.Errorf("vector upsert failed: %w", err)
	}

	doc := &models.Document{
		ID:       id,
		Title:    title,
		Content:  content,
		VectorID: id, // One vector per document, sharing the document id.
		Created:  time.Now().Unix(),
	}

	if err := s.store.Create(ctx, doc); err != nil {
		// Known gap: the vector entry has no matching row now. Surface the
		// ids so an offline sweep can reconcile.
		s.log.WithPayload(map[string]interface{}{
			"document_id": id,
			"vector_id":   id,
		}).Error("document insert failed after vector upsert, orphaned vector entry left behind")
		return nil, fmt.Errorf("document insert failed: %w", err)
	}

	return doc, nil
}

// GetDocument returns the full stored row for the given id.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.store.GetByID(ctx, id)
}

// ListDocuments returns up to 50 most recently created documents, newest
// first, reduced to their listing shape.
func (s *Service) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	docs, err := s.store.ListRecent(ctx, listWindow)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for i := range docs {
		summaries = append(summaries, docs[i].Summary())
	}
	return summaries, nil
}

// SearchDocuments embeds the query and returns its nearest neighbors.
// limit values outside [1, 20] are clamped: non-positive falls back to the
// default of 10, anything above 20 is capped.
func (s *Service) SearchDocuments(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	vector, err := s.queryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		title := m.Title
		if title == "" {
			title = "Untitled"
		}
		results = append(results, SearchResult{
			ID:         m.ID,
			Title:      title,
			Similarity: m.Score, // Raw score in the index's metric.
		})
	}

	return &SearchResponse{Query: query, Results: results}, nil
}

// queryEmbedding resolves the query vector through the cache when one is
// configured, falling back to the provider on a miss.
func (s *Service) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if s.cache != nil {
		if vector, ok := s.cache.Get(ctx, query); ok {
			return vector, nil
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty vector", ErrEmbeddingFailed)
	}

	if s.cache != nil {
		s.cache.Put(ctx, query, vector)
	}
	return vector, nil
}
