package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	TaskId           string    `json:"task_id"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	FileSize         int64     `json:"file_size"`
	Status           string    `json:"status"`
	UploadTime       time.Time `json:"upload_time"`
}

type DocumentListItem struct {
	Id               uuid.UUID  `json:"id"`
	OriginalFilename string     `json:"original_filename"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	UploadTime       time.Time  `json:"upload_time"`
	ProcessTime      *time.Time `json:"process_time,omitempty"`
}

type ListDocumentsResponse struct {
	Documents  []DocumentListItem `json:"documents"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type ShowDocumentResponse struct {
	Id               uuid.UUID  `json:"id"`
	OriginalFilename string     `json:"original_filename"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	TaskId           string     `json:"task_id,omitempty"`
	ChunksCount      int64      `json:"chunks_count"`
	ContentLength    int        `json:"content_length"`
	UploadTime       time.Time  `json:"upload_time"`
	ProcessTime      *time.Time `json:"process_time,omitempty"`
}

type DocumentChunkItem struct {
	Id            uuid.UUID `json:"id"`
	ChunkIndex    int       `json:"chunk_index"`
	Content       string    `json:"content"`
	ContentLength int       `json:"content_length"`
}

type DocumentChunksResponse struct {
	DocumentId uuid.UUID           `json:"document_id"`
	Chunks     []DocumentChunkItem `json:"chunks"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

type ReprocessDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	TaskId string    `json:"task_id"`
	Status string    `json:"status"`
}

type StatsOverviewResponse struct {
	TotalDocuments int64            `json:"total_documents"`
	ByStatus       map[string]int64 `json:"by_status"`
	TotalChunks    int64            `json:"total_chunks"`
	TotalVectors   int64            `json:"total_vectors"`
	VectorBackend  string           `json:"vector_backend"`
}

type JobStatusResponse struct {
	TaskId     string     `json:"task_id"`
	DocumentId uuid.UUID  `json:"document_id"`
	State      string     `json:"state"`
	Attempts   int        `json:"attempts"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
