package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID
	Filename         string
	OriginalFilename string
	FilePath         string
	FileSize         int64
	FileType         string
	Content          string
	Status           string
	TaskId           string
	ErrorMessage     string
	UploadTime       time.Time
	ProcessTime      *time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
