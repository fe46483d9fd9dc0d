package models

// Document represents a single ingested document. Each row owns exactly one
// entry in the Milvus collection; VectorID always equals ID in the current
// design (one vector per document).
type Document struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	Title    string `gorm:"not null;size:255" json:"title"`
	Content  string `gorm:"not null;type:text" json:"content"`
	VectorID string `gorm:"size:64" json:"vector_id"`
	Created  int64  `gorm:"not null;index" json:"created"` // Epoch seconds, assigned server-side at creation.
}

// TableName 指定 GORM 使用的表名。
func (Document) TableName() string {
	return "documents"
}

// DocumentSummary is the reduced listing shape: content is omitted so that
// the listing endpoint stays cheap on wide rows.
type DocumentSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Created int64  `json:"created"`
}

// Summary 将完整的文档行压缩为列表视图。
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{ID: d.ID, Title: d.Title, Created: d.Created}
}
