package rag

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/contextutil"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/llm"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore"
)

const (
	noContextAnswer = "I couldn't find any relevant information in your documents. Please make sure you've uploaded documents and they've been processed."
	timeoutAnswer   = "The LLM took too long to respond. Please try again."
)

// Completer generates a grounded answer from an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine answers questions over a user's document corpus.
type Engine interface {
	Ask(ctx context.Context, ownerID string, req AskRequest) (*Answer, error)
}

// Options tunes retrieval and fusion.
type Options struct {
	Collection       string
	TopKVector       int
	TopKBM25         int
	TopKFinal        int
	RRFConstant      int
	LexicalMaxChunks int
}

type ragEngine struct {
	embedder  llm.Embedder
	vectors   vectorstore.VectorStore
	chunks    storage.ChunkStore
	documents storage.DocumentStore
	completer Completer
	opts      Options
}

// NewEngine wires a hybrid-retrieval engine from its dependencies.
func NewEngine(embedder llm.Embedder, vectors vectorstore.VectorStore, chunks storage.ChunkStore, documents storage.DocumentStore, completer Completer, opts Options) Engine {
	return &ragEngine{
		embedder:  embedder,
		vectors:   vectors,
		chunks:    chunks,
		documents: documents,
		completer: completer,
		opts:      opts,
	}
}

// Ask runs hybrid retrieval and grounded generation. The two retrieval legs
// run concurrently; a question that matches nothing returns a no_context
// answer without touching the LLM.
func (e *ragEngine) Ask(ctx context.Context, ownerID string, req AskRequest) (*Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		vectorRanked  []string
		lexicalRanked []string
		chunkMap      = make(map[string]retrievedChunk)
		lexicalChunks []*storage.ChunkRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vecs, err := e.embedder.EmbedTexts(gctx, []string{req.Question})
		if err != nil {
			return fmt.Errorf("failed to embed question: %w", err)
		}
		results, err := e.vectors.Search(gctx, e.opts.Collection, vecs[0], ownerID, req.DocumentIDs, e.opts.TopKVector)
		if err != nil {
			return fmt.Errorf("vector search failed: %w", err)
		}
		for _, r := range results {
			vectorRanked = append(vectorRanked, r.ChunkID)
			chunkMap[r.ChunkID] = retrievedChunk{
				DocumentID:   r.Payload.DocumentID,
				PageNumber:   r.Payload.PageNumber,
				SentenceText: r.Payload.SentenceText,
				WindowText:   r.Payload.WindowText,
			}
		}
		return nil
	})

	g.Go(func() error {
		var err error
		lexicalChunks, err = e.chunks.ChunksForLexical(gctx, ownerID, req.DocumentIDs, e.opts.LexicalMaxChunks)
		if err != nil {
			return fmt.Errorf("failed to load chunks for lexical search: %w", err)
		}
		ids := make([]string, len(lexicalChunks))
		texts := make([]string, len(lexicalChunks))
		for i, c := range lexicalChunks {
			ids[i] = c.ID
			texts[i] = c.LexicalContent
		}
		lexicalRanked = NewLexicalIndex(ids, texts).TopK(req.Question, e.opts.TopKBM25)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The vector payload already carries the chunk; fill the gaps from the
	// lexical candidates.
	for _, c := range lexicalChunks {
		if _, ok := chunkMap[c.ID]; ok {
			continue
		}
		chunkMap[c.ID] = retrievedChunk{
			DocumentID:   c.DocumentID,
			PageNumber:   c.PageNumber,
			SentenceText: c.SentenceText,
			WindowText:   c.WindowText,
		}
	}

	fused := FuseRanked([][]string{vectorRanked, lexicalRanked}, e.opts.RRFConstant)
	if len(fused) > e.opts.TopKFinal {
		fused = fused[:e.opts.TopKFinal]
	}

	retrieved := make([]retrievedChunk, 0, len(fused))
	for _, f := range fused {
		chunk, ok := chunkMap[f.ID]
		if !ok {
			continue
		}
		chunk.Score = f.Score
		retrieved = append(retrieved, chunk)
	}

	if len(retrieved) == 0 {
		logger.Info("no context retrieved", "owner_id", ownerID)
		return &Answer{Answer: noContextAnswer, Sources: []Citation{}, Status: StatusNoContext}, nil
	}

	docIDs := make([]string, 0, len(retrieved))
	seenDocs := make(map[string]struct{}, len(retrieved))
	for _, chunk := range retrieved {
		if _, ok := seenDocs[chunk.DocumentID]; ok {
			continue
		}
		seenDocs[chunk.DocumentID] = struct{}{}
		docIDs = append(docIDs, chunk.DocumentID)
	}
	filenames, err := e.documents.FilenamesFor(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve citation filenames: %w", err)
	}

	prompt := BuildPrompt(req.Question, retrieved)
	answer, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrGenerationTimeout) {
			logger.Warn("generation timed out", "owner_id", ownerID)
			answer = timeoutAnswer
		} else {
			return nil, err
		}
	}

	logger.Info("question answered",
		"owner_id", ownerID,
		"vector_hits", len(vectorRanked),
		"lexical_hits", len(lexicalRanked),
		"fused", len(retrieved))

	return &Answer{
		Answer:  answer,
		Sources: BuildCitations(retrieved, filenames),
		Status:  StatusSuccess,
	}, nil
}
