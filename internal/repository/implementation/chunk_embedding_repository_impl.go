package implementation

import (
	"context"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/mapper"
	"doc-qa-be/internal/model"
	"doc-qa-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkEmbeddingMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkEmbeddingMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&model.ChunkEmbedding{}).Error
}

func (r *ChunkEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChunkEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilar computes cosine similarity in SQL.
// pgvector's <=> operator is cosine distance, so similarity is 1 - distance.
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredChunkEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ChunkEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("chunk_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("chunk_embeddings.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunkEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunkEmbedding{
			Embedding:  r.mapper.ToEntity(&res.ChunkEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
