package store

import (
	"context"
	"errors"
	"fmt"

	"Athena_1.0/internal/models"

	"gorm.io/gorm"
)

// ErrDocumentNotFound 在按 ID 查找不到文档时返回。
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore provides data access methods for document rows.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create 插入一条新的文档行。ID 与时间戳由调用方 (service 层) 预先填好。
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	result := s.db.WithContext(ctx).Create(doc)
	if result.Error != nil {
		return fmt.Errorf("failed to insert document: %w", result.Error)
	}
	return nil
}

// GetByID 按主键查找一条文档行，未命中时返回 ErrDocumentNotFound。
func (s *DocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// ListRecent 按创建时间倒序返回最多 limit 条文档。
// created 相同时按 id 排序，保证翻页窗口的顺序稳定。
func (s *DocumentStore) ListRecent(ctx context.Context, limit int) ([]models.Document, error) {
	var docs []models.Document
	result := s.db.WithContext(ctx).
		Order("created DESC, id").
		Limit(limit).
		Find(&docs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list documents: %w", result.Error)
	}
	return docs, nil
}
