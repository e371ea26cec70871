package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/model"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/repository/memory"
	"doc-qa-be/internal/repository/specification"
	"doc-qa-be/internal/repository/unitofwork"
	"doc-qa-be/pkg/events"
	pktNats "doc-qa-be/pkg/nats"
	"doc-qa-be/pkg/vectorstore"

	"github.com/google/uuid"
)

var supportedFileTypes = map[string]bool{
	"pdf":  true,
	"docx": true,
	"doc":  true,
	"xlsx": true,
	"xls":  true,
	"txt":  true,
	"md":   true,
}

type DocumentServiceOptions struct {
	UploadDir     string
	MaxFileSizeMB int
	VectorBackend string
}

type IDocumentService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, page, pageSize int, status string) (*dto.ListDocumentsResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Chunks(ctx context.Context, id uuid.UUID, page, pageSize int) (*dto.DocumentChunksResponse, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*dto.ReprocessDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.StatsOverviewResponse, error)
	JobStatus(ctx context.Context, taskId string) (*dto.JobStatusResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	vectorStore      vectorstore.Store
	jobRepo          *memory.JobStatusRepository
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	opts             DocumentServiceOptions
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	vectorStore vectorstore.Store,
	jobRepo *memory.JobStatusRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	opts DocumentServiceOptions,
) IDocumentService {
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.MaxFileSizeMB <= 0 {
		opts.MaxFileSizeMB = 50
	}
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		vectorStore:      vectorStore,
		jobRepo:          jobRepo,
		eventPublisher:   eventPublisher,
		log:              log,
		opts:             opts,
	}
}

func (s *documentService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	maxBytes := int64(s.opts.MaxFileSizeMB) * 1024 * 1024
	if file.Size > maxBytes {
		return nil, fmt.Errorf("file too large (max %dMB)", s.opts.MaxFileSizeMB)
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !supportedFileTypes[fileType] {
		return nil, fmt.Errorf("unsupported file type: %q", fileType)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := os.MkdirAll(s.opts.UploadDir, 0755); err != nil {
		return nil, err
	}

	docId := uuid.New()
	storedName := fmt.Sprintf("%s.%s", docId, fileType)
	storedPath := filepath.Join(s.opts.UploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	taskId := uuid.NewString()
	doc := entity.Document{
		Id:               docId,
		Filename:         storedName,
		OriginalFilename: file.Filename,
		FilePath:         storedPath,
		FileSize:         file.Size,
		FileType:         fileType,
		Status:           model.DocumentStatusQueued,
		TaskId:           taskId,
		UploadTime:       time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	s.jobRepo.Create(taskId, docId)

	if err := s.enqueue(ctx, docId, taskId); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewDocumentUploaded(docId, doc.OriginalFilename, doc.FileType, doc.FileSize)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("document", "Failed to publish uploaded event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.UploadDocumentResponse{
		Id:               doc.Id,
		TaskId:           taskId,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		Status:           doc.Status,
		UploadTime:       doc.UploadTime,
	}, nil
}

func (s *documentService) enqueue(ctx context.Context, docId uuid.UUID, taskId string) error {
	msgPayload := dto.PublishIngestDocumentMessage{
		DocumentId: docId,
		TaskId:     taskId,
		Attempt:    1,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *documentService) List(ctx context.Context, page, pageSize int, status string) (*dto.ListDocumentsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	filters := []specification.Specification{}
	if status != "" {
		filters = append(filters, specification.ByStatus{Status: status})
	}

	total, err := uow.DocumentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.NewestFirst{},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	docs, err := uow.DocumentRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentListItem, len(docs))
	for i, d := range docs {
		items[i] = dto.DocumentListItem{
			Id:               d.Id,
			OriginalFilename: d.OriginalFilename,
			FileType:         d.FileType,
			FileSize:         d.FileSize,
			Status:           d.Status,
			ErrorMessage:     d.ErrorMessage,
			UploadTime:       d.UploadTime,
			ProcessTime:      d.ProcessTime,
		}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &dto.ListDocumentsResponse{
		Documents:  items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	chunksCount, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: id})
	if err != nil {
		return nil, err
	}

	return &dto.ShowDocumentResponse{
		Id:               doc.Id,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		Status:           doc.Status,
		ErrorMessage:     doc.ErrorMessage,
		TaskId:           doc.TaskId,
		ChunksCount:      chunksCount,
		ContentLength:    len(doc.Content),
		UploadTime:       doc.UploadTime,
		ProcessTime:      doc.ProcessTime,
	}, nil
}

func (s *documentService) Chunks(ctx context.Context, id uuid.UUID, page, pageSize int) (*dto.DocumentChunksResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	total, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: id})
	if err != nil {
		return nil, err
	}

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentId{DocumentId: id},
		specification.ByChunkOrder{},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentChunkItem, len(chunks))
	for i, c := range chunks {
		items[i] = dto.DocumentChunkItem{
			Id:            c.Id,
			ChunkIndex:    c.ChunkIndex,
			Content:       c.Content,
			ContentLength: c.ContentLength,
		}
	}

	return &dto.DocumentChunksResponse{
		DocumentId: id,
		Chunks:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *documentService) Reprocess(ctx context.Context, id uuid.UUID) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	if doc.Status == model.DocumentStatusProcessing {
		return nil, fmt.Errorf("document is already being processed")
	}

	// Supersede any previous job for this document
	if doc.TaskId != "" {
		s.jobRepo.MarkCanceled(doc.TaskId)
	}

	taskId := uuid.NewString()
	doc.TaskId = taskId
	doc.Status = model.DocumentStatusQueued
	doc.ErrorMessage = ""
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	s.jobRepo.Create(taskId, id)
	if err := s.enqueue(ctx, id, taskId); err != nil {
		return nil, err
	}

	return &dto.ReprocessDocumentResponse{
		Id:     id,
		TaskId: taskId,
		Status: doc.Status,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}

	// Stop a pending or running ingest job for this document
	if doc.TaskId != "" {
		s.jobRepo.MarkCanceled(doc.TaskId)
	}

	if err := s.vectorStore.DeleteByDocument(ctx, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("document", "Failed to remove stored file", map[string]interface{}{
				"path":  doc.FilePath,
				"error": err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewDocumentDeleted(id)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("document", "Failed to publish deleted event", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}

func (s *documentService) Stats(ctx context.Context) (*dto.StatsOverviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := uow.DocumentRepository().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	totalChunks, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	totalVectors, err := s.vectorStore.Count(ctx)
	if err != nil {
		s.log.Warn("document", "Vector count unavailable", map[string]interface{}{"error": err.Error()})
		totalVectors = -1
	}

	return &dto.StatsOverviewResponse{
		TotalDocuments: total,
		ByStatus:       byStatus,
		TotalChunks:    totalChunks,
		TotalVectors:   totalVectors,
		VectorBackend:  s.opts.VectorBackend,
	}, nil
}

func (s *documentService) JobStatus(ctx context.Context, taskId string) (*dto.JobStatusResponse, error) {
	job, found := s.jobRepo.Get(taskId)
	if !found {
		return nil, nil
	}
	return &dto.JobStatusResponse{
		TaskId:     job.TaskId,
		DocumentId: job.DocumentId,
		State:      job.State,
		Attempts:   job.Attempts,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		FinishedAt: job.FinishedAt,
	}, nil
}
