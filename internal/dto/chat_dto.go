package dto

import "github.com/google/uuid"

type AskRequest struct {
	Question            string   `json:"question" validate:"required"`
	TopK                int      `json:"top_k" validate:"omitempty,min=1,max=20"`
	SimilarityThreshold *float64 `json:"similarity_threshold" validate:"omitempty,min=0,max=1"`
	UseThreshold        *bool    `json:"use_threshold"`
	UseMMR              *bool    `json:"use_mmr"`
	MMRLambda           *float64 `json:"mmr_lambda" validate:"omitempty,min=0,max=1"`
}

type SourceInfo struct {
	DocumentId       uuid.UUID `json:"document_id"`
	ChunkId          uuid.UUID `json:"chunk_id"`
	ChunkIndex       int       `json:"chunk_index"`
	DocumentName     string    `json:"document_name"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	ChunkText        string    `json:"chunk_text"`
	ContentPreview   string    `json:"content_preview"`
	Similarity       float64   `json:"similarity"`
	AboveThreshold   bool      `json:"above_threshold"`
}

type SearchInfo struct {
	TotalFound          int     `json:"total_found"`
	AboveThreshold      int     `json:"above_threshold"`
	Returned            int     `json:"returned"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	ResultQuality       string  `json:"result_quality"` // "high", "low" or "none"
}

type AskResponse struct {
	Answer     string       `json:"answer"`
	Sources    []SourceInfo `json:"sources"`
	SearchInfo SearchInfo   `json:"search_info"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type SearchResponse struct {
	Results    []SourceInfo `json:"results"`
	SearchInfo SearchInfo   `json:"search_info"`
}
