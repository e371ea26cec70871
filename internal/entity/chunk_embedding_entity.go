package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChunkEmbedding struct {
	Id             uuid.UUID
	VectorId       string
	DocumentId     uuid.UUID
	ChunkId        uuid.UUID
	ChunkIndex     int
	Content        string
	Source         string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
