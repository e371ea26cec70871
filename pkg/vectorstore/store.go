package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ChunkVector is one embedded chunk headed for the vector backend.
type ChunkVector struct {
	VectorID   string
	DocumentID uuid.UUID
	ChunkID    uuid.UUID
	ChunkIndex int
	Content    string
	Source     string // original filename
	Embedding  []float32
}

// SearchHit is a scored match returned by Search.
type SearchHit struct {
	VectorID   string
	DocumentID uuid.UUID
	ChunkID    uuid.UUID
	ChunkIndex int
	Content    string
	Source     string
	Similarity float64   // max(0, 1-distance), 1.0 = identical
	Embedding  []float32 // stored vector, used for MMR re-ranking
}

// Store abstracts the vector backend. Implementations: pgvector (default)
// and milvus.
type Store interface {
	AddChunks(ctx context.Context, vectors []*ChunkVector) error
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
	Search(ctx context.Context, embedding []float32, limit int) ([]*SearchHit, error)
	Count(ctx context.Context) (int64, error)
}

// NewVectorID builds the stable id format for one chunk vector:
// doc_{documentID}_chunk_{index}_{uuid8}. The random suffix keeps ids
// unique across reprocessing runs of the same document.
func NewVectorID(documentID uuid.UUID, chunkIndex int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("doc_%s_chunk_%d_%s", documentID, chunkIndex, suffix)
}

// ClampSimilarity maps a raw cosine similarity into [0, 1].
func ClampSimilarity(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
