package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkMetadata is stored as JSON alongside each chunk row.
type ChunkMetadata struct {
	DocumentId string `json:"document_id"`
	ChunkId    string `json:"chunk_id"`
	ChunkIndex int    `json:"chunk_index"`
	Source     string `json:"source"`
}

type DocumentChunk struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	ChunkIndex    int
	Content       string
	ContentLength int
	Metadata      ChunkMetadata
	CreatedAt     time.Time
}
