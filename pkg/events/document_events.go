package events

import (
	"time"

	"github.com/google/uuid"
)

// Document lifecycle event types, published on the EVENTS stream as
// events.<type>.
const (
	TypeDocumentUploaded  = "document.uploaded"
	TypeDocumentCompleted = "document.completed"
	TypeDocumentFailed    = "document.failed"
	TypeDocumentDeleted   = "document.deleted"
)

func NewDocumentUploaded(documentID uuid.UUID, originalFilename, fileType string, fileSize int64) Event {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"document_id":       documentID.String(),
			"original_filename": originalFilename,
			"file_type":         fileType,
			"file_size":         fileSize,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentCompleted(documentID uuid.UUID, chunkCount int, processSeconds float64) Event {
	return BaseEvent{
		Type: TypeDocumentCompleted,
		Data: map[string]interface{}{
			"document_id":     documentID.String(),
			"chunk_count":     chunkCount,
			"process_seconds": processSeconds,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailed(documentID uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentID.String(),
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(documentID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentID.String(),
		},
		OccurredAt: time.Now(),
	}
}
