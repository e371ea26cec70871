package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/model"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/repository/memory"
	"doc-qa-be/internal/repository/specification"
	"doc-qa-be/internal/repository/unitofwork"
	"doc-qa-be/pkg/chunker"
	"doc-qa-be/pkg/embedding"
	"doc-qa-be/pkg/events"
	"doc-qa-be/pkg/extractor"
	pktNats "doc-qa-be/pkg/nats"
	"doc-qa-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIngestConsumerService interface {
	Consume(ctx context.Context) error
}

type IngestOptions struct {
	ChunkSize     int
	ChunkOverlap  int
	RetryAttempts int
	RetryBackoff  time.Duration
}

type ingestConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	textExtractor     *extractor.Extractor
	vectorStore       vectorstore.Store
	jobRepo           *memory.JobStatusRepository
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	log               logger.ILogger
	opts              IngestOptions
}

func NewIngestConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	textExtractor *extractor.Extractor,
	vectorStore vectorstore.Store,
	jobRepo *memory.JobStatusRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	opts IngestOptions,
) IIngestConsumerService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = chunker.DefaultOverlap
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 60 * time.Second
	}
	return &ingestConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		textExtractor:     textExtractor,
		vectorStore:       vectorStore,
		jobRepo:           jobRepo,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		log:               log,
		opts:              opts,
	}
}

func (cs *ingestConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *ingestConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ingest", "Failed to unmarshal ingest message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("ingest", "Processing document", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
		"task_id":     payload.TaskId,
		"attempt":     payload.Attempt,
	})

	if cs.canceled(payload.TaskId) {
		cs.log.Info("ingest", "Job canceled before start", map[string]interface{}{"task_id": payload.TaskId})
		cs.jobRepo.SetState(payload.TaskId, memory.JobStateFailed, "canceled")
		msg.Ack()
		return
	}

	cs.jobRepo.IncrementAttempts(payload.TaskId)
	cs.jobRepo.SetState(payload.TaskId, memory.JobStateInProgress, "")

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to load document: %v", err))
		return
	}
	if doc == nil {
		cs.log.Warn("ingest", "Document not found, dropping job", map[string]interface{}{"document_id": payload.DocumentId.String()})
		cs.jobRepo.SetState(payload.TaskId, memory.JobStateFailed, "document not found")
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, model.DocumentStatusProcessing, ""); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to mark processing: %v", err))
		return
	}

	started := time.Now()

	// Phase 1: text extraction
	content, err := cs.textExtractor.Extract(ctx, doc.FilePath, doc.FileType)
	if err != nil {
		reason := fmt.Sprintf("extraction failed: %v", err)
		if errors.Is(err, extractor.ErrEmptyContent) || errors.Is(err, extractor.ErrUnsupportedFormat) {
			// deterministic, retrying cannot help
			cs.failPermanently(ctx, msg, payload, reason)
			return
		}
		cs.retryOrFail(ctx, msg, payload, reason)
		return
	}

	doc.Content = content
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to save extracted content: %v", err))
		return
	}

	if cs.canceled(payload.TaskId) {
		cs.abortCanceled(ctx, uow, payload)
		msg.Ack()
		return
	}

	// Phase 2: chunking
	chunks := chunker.Split(content, cs.opts.ChunkSize, cs.opts.ChunkOverlap)
	cs.log.Info("ingest", "Content split into chunks", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
	})

	// Phase 3: embedding
	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	newVectors := make([]*vectorstore.ChunkVector, 0, len(chunks))
	for i, chunk := range chunks {
		if cs.canceled(payload.TaskId) {
			cs.abortCanceled(ctx, uow, payload)
			msg.Ack()
			return
		}

		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("embedding failed at chunk %d: %v", i, err))
			return
		}

		chunkId := uuid.New()
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:            chunkId,
			DocumentId:    doc.Id,
			ChunkIndex:    i,
			Content:       chunk,
			ContentLength: len(chunk),
			Metadata: entity.ChunkMetadata{
				DocumentId: doc.Id.String(),
				ChunkId:    chunkId.String(),
				ChunkIndex: i,
				Source:     doc.OriginalFilename,
			},
			CreatedAt: time.Now(),
		})
		newVectors = append(newVectors, &vectorstore.ChunkVector{
			VectorID:   vectorstore.NewVectorID(doc.Id, i),
			DocumentID: doc.Id,
			ChunkID:    chunkId,
			ChunkIndex: i,
			Content:    chunk,
			Source:     doc.OriginalFilename,
			Embedding:  res.Embedding.Values,
		})
	}

	// Phase 4: persist chunks, replacing any previous run
	if err := uow.Begin(ctx); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to begin transaction: %v", err))
		return
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to delete old chunks: %v", err))
		return
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to create chunks: %v", err))
		return
	}
	if err := uow.Commit(); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to commit chunks: %v", err))
		return
	}

	// Phase 5: vector store sync. A retried run deletes and re-adds, so a
	// failure here leaves the job retriable without orphaned vectors.
	if err := cs.vectorStore.DeleteByDocument(ctx, doc.Id); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to purge old vectors: %v", err))
		return
	}
	if err := cs.vectorStore.AddChunks(ctx, newVectors); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to store vectors: %v", err))
		return
	}

	// Done
	now := time.Now()
	doc.Status = model.DocumentStatusCompleted
	doc.ErrorMessage = ""
	doc.ProcessTime = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		cs.retryOrFail(ctx, msg, payload, fmt.Sprintf("failed to mark completed: %v", err))
		return
	}

	cs.jobRepo.SetState(payload.TaskId, memory.JobStateSucceeded, "")

	if cs.eventPublisher != nil {
		evt := events.NewDocumentCompleted(doc.Id, len(newChunks), time.Since(started).Seconds())
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("ingest", "Failed to publish completed event", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.log.Info("ingest", "Document processed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(newChunks),
		"seconds":     time.Since(started).Seconds(),
	})
	msg.Ack()
}

func (cs *ingestConsumerService) canceled(taskId string) bool {
	return cs.jobRepo.IsCanceled(taskId)
}

func (cs *ingestConsumerService) abortCanceled(ctx context.Context, uow unitofwork.UnitOfWork, payload dto.PublishIngestDocumentMessage) {
	cs.log.Info("ingest", "Job canceled mid-flight", map[string]interface{}{"task_id": payload.TaskId})
	cs.jobRepo.SetState(payload.TaskId, memory.JobStateFailed, "canceled")
	if err := uow.DocumentRepository().UpdateStatus(ctx, payload.DocumentId, model.DocumentStatusFailed, "canceled"); err != nil {
		cs.log.Warn("ingest", "Failed to mark canceled document", map[string]interface{}{"error": err.Error()})
	}
}

// retryOrFail either schedules a redelivery after the backoff or, once the
// attempt budget is spent, marks the document and job failed.
func (cs *ingestConsumerService) retryOrFail(ctx context.Context, msg *message.Message, payload dto.PublishIngestDocumentMessage, reason string) {
	if payload.Attempt < cs.opts.RetryAttempts {
		next := payload
		next.Attempt++

		cs.log.Warn("ingest", "Ingest attempt failed, scheduling retry", map[string]interface{}{
			"document_id":  payload.DocumentId.String(),
			"task_id":      payload.TaskId,
			"attempt":      payload.Attempt,
			"next_attempt": next.Attempt,
			"backoff_s":    cs.opts.RetryBackoff.Seconds(),
			"reason":       reason,
		})
		cs.jobRepo.SetState(payload.TaskId, memory.JobStatePending, reason)

		body, err := json.Marshal(next)
		if err != nil {
			cs.log.Error("ingest", "Failed to marshal retry message", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			return
		}

		time.AfterFunc(cs.opts.RetryBackoff, func() {
			if cs.jobRepo.IsCanceled(payload.TaskId) {
				cs.jobRepo.SetState(payload.TaskId, memory.JobStateFailed, "canceled")
				return
			}
			if err := cs.publisherService.Publish(context.Background(), body); err != nil {
				cs.log.Error("ingest", "Failed to republish ingest job", map[string]interface{}{"error": err.Error()})
			}
		})

		msg.Ack()
		return
	}

	cs.failPermanently(ctx, msg, payload, reason)
}

func (cs *ingestConsumerService) failPermanently(ctx context.Context, msg *message.Message, payload dto.PublishIngestDocumentMessage, reason string) {
	cs.log.Error("ingest", "Ingest job failed permanently", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
		"task_id":     payload.TaskId,
		"attempts":    payload.Attempt,
		"reason":      reason,
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().UpdateStatus(ctx, payload.DocumentId, model.DocumentStatusFailed, reason); err != nil {
		cs.log.Error("ingest", "Failed to mark document failed", map[string]interface{}{"error": err.Error()})
	}
	cs.jobRepo.SetState(payload.TaskId, memory.JobStateFailed, reason)

	if cs.eventPublisher != nil {
		evt := events.NewDocumentFailed(payload.DocumentId, reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("ingest", "Failed to publish failed event", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
