package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Vector   VectorConfig
	Ai       AIConfig
	Ocr      OCRConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	IngestLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type VectorConfig struct {
	Type             string // "pgvector" or "milvus"
	MilvusAddress    string
	MilvusCollection string
	Dimension        int
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini" or "ollama"
	GeminiApiKey         string
	GeminiEmbeddingModel string
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	OllamaLLMModel       string
	LLMProvider          string // "ollama", "huggingface" or "none"
	LLMModel             string
	LLMBaseURL           string
	HuggingFaceApiKey    string
}

type OCRConfig struct {
	Enabled       bool
	UseGPU        bool
	DPI           float64
	Languages     string // comma separated tesseract codes
	MaxConcurrent int
	PageTimeoutS  int
	MaxFileSizeMB int // files over this skip the OCR fallback
	MinTextLength int // text-layer chars below this trigger OCR
}

type IngestConfig struct {
	ChunkSize           int
	ChunkOverlap        int
	RetryAttempts       int
	RetryBackoffS       int
	SimilarityThreshold float64
	TopK                int
	MMRLambda           float64
	MaxFileSizeMB       int
	UploadDir           string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			IngestLogFilePath:  getEnv("INGEST_LOG_FILE_PATH", "ingest.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Vector: VectorConfig{
			Type:             getEnv("VECTOR_DB_TYPE", "pgvector"),
			MilvusAddress:    getEnv("MILVUS_ADDRESS", "localhost:19530"),
			MilvusCollection: getEnv("MILVUS_COLLECTION", "document_chunks"),
			Dimension:        getEnvAsInt("EMBEDDING_DIMENSION", 768),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			GeminiApiKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaLLMModel:       getEnv("OLLAMA_LLM_MODEL", "llama3"),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
			HuggingFaceApiKey:    getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ocr: OCRConfig{
			Enabled:       getEnvAsBool("OCR_ENABLED", true),
			UseGPU:        getEnvAsBool("OCR_USE_GPU", false),
			DPI:           getEnvAsFloat("OCR_DPI", 200),
			Languages:     getEnv("OCR_LANGUAGES", "eng"),
			MaxConcurrent: getEnvAsInt("OCR_MAX_CONCURRENT", 2),
			PageTimeoutS:  getEnvAsInt("OCR_PAGE_TIMEOUT_SECONDS", 60),
			MaxFileSizeMB: getEnvAsInt("OCR_MAX_FILE_SIZE_MB", 50),
			MinTextLength: getEnvAsInt("OCR_MIN_TEXT_LENGTH", 50),
		},
		Ingest: IngestConfig{
			ChunkSize:           getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("CHUNK_OVERLAP", 200),
			RetryAttempts:       getEnvAsInt("INGEST_RETRY_ATTEMPTS", 3),
			RetryBackoffS:       getEnvAsInt("INGEST_RETRY_BACKOFF_SECONDS", 60),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.7),
			TopK:                getEnvAsInt("RETRIEVAL_TOP_K", 5),
			MMRLambda:           getEnvAsFloat("MMR_LAMBDA", 0.7),
			MaxFileSizeMB:       getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
