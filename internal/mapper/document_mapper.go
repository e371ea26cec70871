package mapper

import (
	"time"

	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/model"

	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:               d.Id,
		Filename:         d.Filename,
		OriginalFilename: d.OriginalFilename,
		FilePath:         d.FilePath,
		FileSize:         d.FileSize,
		FileType:         d.FileType,
		Content:          d.Content,
		Status:           d.Status,
		TaskId:           d.TaskId,
		ErrorMessage:     d.ErrorMessage,
		UploadTime:       d.UploadTime,
		ProcessTime:      d.ProcessTime,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
		IsDeleted:        d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:               d.Id,
		Filename:         d.Filename,
		OriginalFilename: d.OriginalFilename,
		FilePath:         d.FilePath,
		FileSize:         d.FileSize,
		FileType:         d.FileType,
		Content:          d.Content,
		Status:           d.Status,
		TaskId:           d.TaskId,
		ErrorMessage:     d.ErrorMessage,
		UploadTime:       d.UploadTime,
		ProcessTime:      d.ProcessTime,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
