package mapper

import (
	"encoding/json"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var meta entity.ChunkMetadata
	if len(c.Metadata) > 0 {
		// Corrupt metadata degrades to an empty struct rather than failing the read
		_ = json.Unmarshal(c.Metadata, &meta)
	}

	return &entity.DocumentChunk{
		Id:            c.Id,
		DocumentId:    c.DocumentId,
		ChunkIndex:    c.ChunkIndex,
		Content:       c.Content,
		ContentLength: c.ContentLength,
		Metadata:      meta,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	metaBytes, _ := json.Marshal(c.Metadata)

	return &model.DocumentChunk{
		Id:            c.Id,
		DocumentId:    c.DocumentId,
		ChunkIndex:    c.ChunkIndex,
		Content:       c.Content,
		ContentLength: c.ContentLength,
		Metadata:      datatypes.JSON(metaBytes),
		CreatedAt:     c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
