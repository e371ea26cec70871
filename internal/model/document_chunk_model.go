package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Document      *Document      `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
	ChunkIndex    int            `gorm:"not null;default:0;index"` // 0-based index for ordering
	Content       string         `gorm:"type:text;not null"`
	ContentLength int            `gorm:"not null;default:0"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
