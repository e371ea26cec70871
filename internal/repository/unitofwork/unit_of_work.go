package unitofwork

import (
	"context"

	"doc-qa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
}
