package dto

import "github.com/google/uuid"

// PublishIngestDocumentMessage is the payload carried on the ingest topic.
// Attempt counts deliveries, starting at 1.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	TaskId     string    `json:"task_id"`
	Attempt    int       `json:"attempt"`
}
