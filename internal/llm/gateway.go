package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Embedder is the embedding gateway contract used by the retrieval and
// ingestion paths.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Gateway is the process-wide embedding handle: the underlying client is
// initialized on first use and shared afterwards. A failed initialization
// is reported to the caller and retried on the next use, so a transient
// outage at startup does not disable embeddings for the process lifetime.
type Gateway struct {
	mu     sync.Mutex
	initFn func() (*EmbeddingsClient, error)
	dim    int
	client *EmbeddingsClient
}

// NewGateway creates an embedding gateway. dim must match the dimension the
// initialized client will produce; it is available before initialization so
// collection setup can proceed.
func NewGateway(dim int, initFn func() (*EmbeddingsClient, error)) *Gateway {
	return &Gateway{initFn: initFn, dim: dim}
}

// Warmup triggers initialization eagerly. Errors are logged, not fatal:
// the first real use will fail explicitly instead.
func (g *Gateway) Warmup(ctx context.Context) {
	if err := g.init(); err != nil {
		slog.ErrorContext(ctx, "embedding gateway initialization failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "embedding gateway ready", "dim", g.dim)
}

func (g *Gateway) init() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return nil
	}
	client, err := g.initFn()
	if err != nil {
		return err
	}
	g.client = client
	return nil
}

// EmbedTexts forwards to the shared client, initializing it on first use.
func (g *Gateway) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := g.init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return g.client.EmbedTexts(ctx, texts)
}

// Dimension returns the fixed system-wide embedding dimension.
func (g *Gateway) Dimension() int {
	return g.dim
}
