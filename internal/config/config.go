package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// External services
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	LLMTimeout         time.Duration
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDim       int
	EmbeddingBatchSize int
	PDFServiceURL      string

	// Storage
	DBPath           string
	QdrantURL        string
	QdrantCollection string

	// Retrieval tuning
	SentenceWindow   int
	MinSentenceLen   int
	TopKVector       int
	TopKBM25         int
	TopKFinal        int
	RRFConstant      int
	LexicalMaxChunks int

	// Ingestion
	IngestWorkers   int
	IngestQueueSize int
	MaxUploadBytes  int64

	// Auth
	JWTSecret string
	JWTExpiry time.Duration

	// Server
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is
// loaded first; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up a few levels looking for a .env at the project root.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "meta-llama/llama-3.1-8b-instruct:free"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		PDFServiceURL:      getEnv("PDF_SERVICE_URL", ""),
		DBPath:             getEnv("DB_PATH", "./data/docqa.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "document_chunks"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	var err error
	// EMBEDDING_DIM must match the output size of the embedding model; the
	// Qdrant collection is created (and validated) with this dimension.
	cfg.EmbeddingDim, err = getEnvInt("EMBEDDING_DIM", 0)
	if err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM is required and must be greater than 0")
	}

	if cfg.EmbeddingBatchSize, err = getEnvInt("EMBEDDING_BATCH_SIZE", 32); err != nil {
		return nil, err
	}
	if cfg.SentenceWindow, err = getEnvInt("SENTENCE_WINDOW", 2); err != nil {
		return nil, err
	}
	if cfg.MinSentenceLen, err = getEnvInt("MIN_SENTENCE_LEN", 21); err != nil {
		return nil, err
	}
	if cfg.TopKVector, err = getEnvInt("TOP_K_VECTOR", 5); err != nil {
		return nil, err
	}
	if cfg.TopKBM25, err = getEnvInt("TOP_K_BM25", 5); err != nil {
		return nil, err
	}
	if cfg.TopKFinal, err = getEnvInt("TOP_K_FINAL", 4); err != nil {
		return nil, err
	}
	if cfg.RRFConstant, err = getEnvInt("RRF_CONSTANT", 60); err != nil {
		return nil, err
	}
	if cfg.LexicalMaxChunks, err = getEnvInt("LEXICAL_MAX_CHUNKS", 50000); err != nil {
		return nil, err
	}
	if cfg.IngestWorkers, err = getEnvInt("INGEST_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.IngestQueueSize, err = getEnvInt("INGEST_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUploadMB) * 1024 * 1024

	llmTimeoutSecs, err := getEnvInt("LLM_TIMEOUT_SECS", 60)
	if err != nil {
		return nil, err
	}
	cfg.LLMTimeout = time.Duration(llmTimeoutSecs) * time.Second

	jwtExpireMins, err := getEnvInt("JWT_EXPIRE_MINUTES", 1440)
	if err != nil {
		return nil, err
	}
	cfg.JWTExpiry = time.Duration(jwtExpireMins) * time.Minute

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create the data directory if it doesn't exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
