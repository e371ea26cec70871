package bootstrap

import (
	"context"
	"log"
	"strings"
	"time"

	"doc-qa-be/internal/config"
	"doc-qa-be/internal/controller"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/repository/implementation"
	"doc-qa-be/internal/repository/memory"
	"doc-qa-be/internal/repository/unitofwork"
	"doc-qa-be/internal/repository/vector"
	"doc-qa-be/internal/service"
	"doc-qa-be/pkg/answer"
	"doc-qa-be/pkg/embedding"
	"doc-qa-be/pkg/events"
	"doc-qa-be/pkg/extractor"
	"doc-qa-be/pkg/llm/factory"
	"doc-qa-be/pkg/ocr"
	"doc-qa-be/pkg/retriever"
	"doc-qa-be/pkg/vectorstore"

	pktNats "doc-qa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ingestTopicName = "INGEST_DOCUMENT"

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	IngestConsumerService service.IIngestConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ingestLogger := logger.NewIsolatedLogger(cfg.App.IngestLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey, cfg.Ai.GeminiEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.GeminiEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	}

	llmBaseURL := cfg.Ai.LLMBaseURL
	if llmBaseURL == "" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.HuggingFaceApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// OCR engine, optional
	var ocrEngine ocr.Engine
	if cfg.Ocr.Enabled {
		languages := strings.Split(cfg.Ocr.Languages, ",")
		engine, err := ocr.NewTesseractEngine(languages, cfg.Ocr.UseGPU)
		if err != nil {
			log.Printf("[WARN] OCR engine unavailable, PDF OCR fallback disabled: %v", err)
		} else {
			ocrEngine = engine
		}
	}

	textExtractor := extractor.New(extractor.Options{
		OCREnabled:         cfg.Ocr.Enabled,
		OCRDPI:             cfg.Ocr.DPI,
		OCRMaxConcurrency:  cfg.Ocr.MaxConcurrent,
		OCRPageTimeout:     time.Duration(cfg.Ocr.PageTimeoutS) * time.Second,
		OCRMaxFileBytes:    int64(cfg.Ocr.MaxFileSizeMB) << 20,
		MinMeaningfulChars: cfg.Ocr.MinTextLength,
	}, ocrEngine)

	// 4. Vector Store
	vectorStore := newVectorStore(db, cfg)

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Audit trail: document lifecycle events land in the main log
	if natsSub != nil {
		err := natsSub.Subscribe("events.document.>", "doc-qa-audit", func(ctx context.Context, evt events.Event) error {
			sysLogger.Info("audit", "Document event", map[string]interface{}{
				"type": evt.EventType(),
				"data": evt.Payload(),
			})
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to document events: %v", err)
		}
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	jobRepo := memory.NewJobStatusRepository()

	// 6. Services
	publisherService := service.NewPublisherService(ingestTopicName, pubSub)
	ingestConsumerService := service.NewIngestConsumerService(
		pubSub,
		ingestTopicName,
		uowFactory,
		embeddingProvider,
		textExtractor,
		vectorStore,
		jobRepo,
		publisherService,
		natsPub,
		ingestLogger,
		service.IngestOptions{
			ChunkSize:     cfg.Ingest.ChunkSize,
			ChunkOverlap:  cfg.Ingest.ChunkOverlap,
			RetryAttempts: cfg.Ingest.RetryAttempts,
			RetryBackoff:  time.Duration(cfg.Ingest.RetryBackoffS) * time.Second,
		},
	)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		vectorStore,
		jobRepo,
		natsPub,
		sysLogger,
		service.DocumentServiceOptions{
			UploadDir:     cfg.Ingest.UploadDir,
			MaxFileSizeMB: cfg.Ingest.MaxFileSizeMB,
			VectorBackend: cfg.Vector.Type,
		},
	)

	chunkRetriever := retriever.New(vectorStore, embeddingProvider)
	answerGenerator := answer.NewGenerator(llmProvider)

	chatService := service.NewChatService(
		uowFactory,
		chunkRetriever,
		answerGenerator,
		vectorStore,
		rdb,
		sysLogger,
		service.ChatServiceOptions{
			SimilarityThreshold: cfg.Ingest.SimilarityThreshold,
			TopK:                cfg.Ingest.TopK,
			MMRLambda:           cfg.Ingest.MMRLambda,
		},
	)

	// 7. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),

		IngestConsumerService: ingestConsumerService,
	}
}

// newVectorStore selects the vector backend. Unknown names fall back to
// pgvector with a warning rather than failing startup.
func newVectorStore(db *gorm.DB, cfg *config.Config) vectorstore.Store {
	switch cfg.Vector.Type {
	case "milvus":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := vectorstore.NewMilvusStore(ctx, cfg.Vector.MilvusAddress, cfg.Vector.MilvusCollection, cfg.Vector.Dimension)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Milvus at %s: %v", cfg.Vector.MilvusAddress, err)
		}
		log.Printf("[INFO] Using Vector Store: MILVUS (%s)", cfg.Vector.MilvusAddress)
		return store
	case "pgvector":
	default:
		log.Printf("[WARN] Unknown VECTOR_DB_TYPE %q, falling back to pgvector", cfg.Vector.Type)
	}
	log.Printf("[INFO] Using Vector Store: PGVECTOR")
	return vector.NewPgVectorStore(implementation.NewChunkEmbeddingRepository(db))
}
