package contract

import (
	"context"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
