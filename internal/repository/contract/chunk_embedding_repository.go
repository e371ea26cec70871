package contract

import (
	"context"

	"doc-qa-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunkEmbedding wraps ChunkEmbedding with its similarity score
type ScoredChunkEmbedding struct {
	Embedding  *entity.ChunkEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// SearchSimilar returns the nearest embeddings with their cosine
	// similarity scores, best first. No threshold is applied here; the
	// retriever owns selection.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredChunkEmbedding, error)
}
