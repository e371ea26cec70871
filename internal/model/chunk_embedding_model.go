package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VectorId       string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkIndex     int             `gorm:"not null;default:0"`
	Content        string          `gorm:"type:text;not null"`
	Source         string          `gorm:"type:varchar(255)"` // original filename
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`  // dimension must match the embedding model
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
