package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document processing statuses.
const (
	DocumentStatusQueued     = "queued"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename         string         `gorm:"type:varchar(255);not null"` // uuid-hex name on disk
	OriginalFilename string         `gorm:"type:varchar(255);not null"`
	FilePath         string         `gorm:"type:varchar(512);not null"`
	FileSize         int64          `gorm:"not null;default:0"`
	FileType         string         `gorm:"type:varchar(16);not null;index"`
	Content          string         `gorm:"type:text"`
	Status           string         `gorm:"type:varchar(16);not null;default:'queued';index"`
	TaskId           string         `gorm:"type:varchar(64);index"`
	ErrorMessage     string         `gorm:"type:text"`
	UploadTime       time.Time      `gorm:"autoCreateTime;index"`
	ProcessTime      *time.Time     `gorm:""`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
