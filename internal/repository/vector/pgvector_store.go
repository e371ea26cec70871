package vector

import (
	"context"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/repository/contract"
	"doc-qa-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// PgVectorStore adapts the chunk embedding repository to the vectorstore
// contract so the retriever works the same against pgvector and milvus.
type PgVectorStore struct {
	repo contract.ChunkEmbeddingRepository
}

func NewPgVectorStore(repo contract.ChunkEmbeddingRepository) vectorstore.Store {
	return &PgVectorStore{
		repo: repo,
	}
}

func (s *PgVectorStore) AddChunks(ctx context.Context, vectors []*vectorstore.ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}

	embeddings := make([]*entity.ChunkEmbedding, len(vectors))
	for i, v := range vectors {
		embeddings[i] = &entity.ChunkEmbedding{
			VectorId:       v.VectorID,
			DocumentId:     v.DocumentID,
			ChunkId:        v.ChunkID,
			ChunkIndex:     v.ChunkIndex,
			Content:        v.Content,
			Source:         v.Source,
			EmbeddingValue: v.Embedding,
		}
	}
	return s.repo.CreateBulk(ctx, embeddings)
}

func (s *PgVectorStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	return s.repo.DeleteByDocumentId(ctx, documentID)
}

func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, limit int) ([]*vectorstore.SearchHit, error) {
	scored, err := s.repo.SearchSimilar(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]*vectorstore.SearchHit, len(scored))
	for i, sc := range scored {
		hits[i] = &vectorstore.SearchHit{
			VectorID:   sc.Embedding.VectorId,
			DocumentID: sc.Embedding.DocumentId,
			ChunkID:    sc.Embedding.ChunkId,
			ChunkIndex: sc.Embedding.ChunkIndex,
			Content:    sc.Embedding.Content,
			Source:     sc.Embedding.Source,
			Similarity: vectorstore.ClampSimilarity(sc.Similarity),
			Embedding:  sc.Embedding.EmbeddingValue,
		}
	}
	return hits, nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
