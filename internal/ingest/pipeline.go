package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/contextutil"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/llm"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore"
)

var (
	// ErrNoContent is returned when a document yields no usable text.
	ErrNoContent = errors.New("no text content extracted from document")

	// ErrPartialWrite is returned when ingestion failed after some chunks
	// were already committed. The document must be marked errored; delete
	// and re-upload is the recovery path.
	ErrPartialWrite = errors.New("ingestion failed after partial write")
)

// Pipeline runs the full ingestion sequence for one document: extract text,
// chunk it, embed the anchors, persist rows and vectors.
type Pipeline struct {
	extractor  PageExtractor
	chunker    *rag.Chunker
	embedder   llm.Embedder
	chunks     storage.ChunkStore
	vectors    vectorstore.VectorStore
	collection string
}

func NewPipeline(extractor PageExtractor, chunker *rag.Chunker, embedder llm.Embedder, chunks storage.ChunkStore, vectors vectorstore.VectorStore, collection string) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		chunker:    chunker,
		embedder:   embedder,
		chunks:     chunks,
		vectors:    vectors,
		collection: collection,
	}
}

// Ingest processes one document and returns the number of chunks created.
// Writes are at-least-once: a failure mid-way leaves committed chunks in
// place, and the caller marks the document errored.
func (p *Pipeline) Ingest(ctx context.Context, doc *storage.Document, data []byte) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	pages, err := p.extractor.ExtractPages(ctx, data, doc.Filename)
	if err != nil {
		return 0, fmt.Errorf("failed to extract text from %s: %w", doc.Filename, err)
	}

	chunks := p.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return 0, ErrNoContent
	}
	logger.Info("document chunked", "document_id", doc.ID, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.SentenceText
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks for %s: %w", doc.ID, err)
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		id := uuid.New().String()
		records[i] = &storage.ChunkRecord{
			ID:             id,
			DocumentID:     doc.ID,
			OwnerID:        doc.OwnerID,
			ChunkIndex:     c.Index,
			SentenceText:   c.SentenceText,
			WindowText:     c.WindowText,
			LexicalContent: strings.ToLower(c.SentenceText),
			PageNumber:     c.PageNumber,
		}
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: embeddings[i],
			Payload: vectorstore.ChunkPayload{
				DocumentID:   doc.ID,
				OwnerID:      doc.OwnerID,
				ChunkIndex:   c.Index,
				SentenceText: c.SentenceText,
				WindowText:   c.WindowText,
				PageNumber:   c.PageNumber,
			},
		}
	}

	written, err := p.chunks.InsertChunks(ctx, records)
	if err != nil {
		if written > 0 {
			return written, fmt.Errorf("%w: %d of %d chunks committed: %v", ErrPartialWrite, written, len(records), err)
		}
		return 0, fmt.Errorf("failed to store chunks for %s: %w", doc.ID, err)
	}

	if err := p.vectors.Upsert(ctx, p.collection, points); err != nil {
		return written, fmt.Errorf("%w: chunks stored but vector upsert failed: %v", ErrPartialWrite, err)
	}

	logger.Info("document ingested", "document_id", doc.ID, "chunks", written)
	return written, nil
}
