package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/config"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/handlers"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/http"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/ingest"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/llm"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	userRepo := storage.NewUserRepo(db)
	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDim); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingDim)

	// The embedding gateway initializes lazily so a slow or down embedding
	// service delays ingestion and queries, not startup
	embedder := llm.NewGateway(cfg.EmbeddingDim, func() (*llm.EmbeddingsClient, error) {
		client := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDim, cfg.EmbeddingBatchSize)
		// probe embed validates reachability and vector size
		if _, err := client.EmbedTexts(context.Background(), []string{"test"}); err != nil {
			return nil, err
		}
		return client, nil
	})
	go embedder.Warmup(ctx)

	// PDF extraction service and ingestion pipeline
	pdfClient := ingest.NewPDFServiceClient(cfg.PDFServiceURL)
	chunker := rag.NewChunker(cfg.SentenceWindow, cfg.MinSentenceLen)
	pipeline := ingest.NewPipeline(
		ingest.NewExtractor(pdfClient),
		chunker,
		embedder,
		chunkRepo,
		vectorStore,
		cfg.QdrantCollection,
	)
	orchestrator := ingest.NewOrchestrator(pipeline, documentRepo, cfg.IngestWorkers, cfg.IngestQueueSize, logger)
	orchestrator.Start(ctx)
	slog.Info("Ingestion workers started", "workers", cfg.IngestWorkers, "queue_size", cfg.IngestQueueSize)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.LLMTimeout)

	// Create RAG engine
	ragEngine := rag.NewEngine(
		embedder,
		vectorStore,
		chunkRepo,
		documentRepo,
		llmClient,
		rag.Options{
			Collection:       cfg.QdrantCollection,
			TopKVector:       cfg.TopKVector,
			TopKBM25:         cfg.TopKBM25,
			TopKFinal:        cfg.TopKFinal,
			RRFConstant:      cfg.RRFConstant,
			LexicalMaxChunks: cfg.LexicalMaxChunks,
		},
	)
	slog.Info("RAG engine initialized")

	tokenService := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTExpiry)

	healthChecks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
		"qdrant": func(ctx context.Context) error {
			_, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection)
			return err
		},
	}

	// Create router with dependencies
	deps := &http.Deps{
		Logger:         logger,
		Users:          userRepo,
		Documents:      documentRepo,
		Chunks:         chunkRepo,
		Vectors:        vectorStore,
		Orchestrator:   orchestrator,
		Engine:         ragEngine,
		Tokens:         tokenService,
		HealthChecks:   healthChecks,
		Collection:     cfg.QdrantCollection,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
