package contract

import (
	"context"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	// UpdateStatus writes only the status transition fields, leaving the
	// (potentially large) content column untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
