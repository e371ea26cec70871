package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByStatus filters documents by processing status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByDocumentId filters chunk rows by their parent document.
type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// ByTaskId filters documents by the ingest task that owns them.
type ByTaskId struct {
	TaskId string
}

func (s ByTaskId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("task_id = ?", s.TaskId)
}

// NewestFirst orders documents by upload time, newest first.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("upload_time DESC")
}

// ByChunkOrder orders chunks by their position in the document.
type ByChunkOrder struct{}

func (s ByChunkOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("chunk_index ASC")
}
