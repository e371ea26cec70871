package mapper

import (
	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToEntity(e *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if e == nil {
		return nil
	}

	return &entity.ChunkEmbedding{
		Id:             e.Id,
		VectorId:       e.VectorId,
		DocumentId:     e.DocumentId,
		ChunkId:        e.ChunkId,
		ChunkIndex:     e.ChunkIndex,
		Content:        e.Content,
		Source:         e.Source,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *ChunkEmbeddingMapper) ToModel(e *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if e == nil {
		return nil
	}

	return &model.ChunkEmbedding{
		Id:             e.Id,
		VectorId:       e.VectorId,
		DocumentId:     e.DocumentId,
		ChunkId:        e.ChunkId,
		ChunkIndex:     e.ChunkIndex,
		Content:        e.Content,
		Source:         e.Source,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
	}
}
