package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGatewayInitOnce(t *testing.T) {
	var calls atomic.Int32
	g := NewGateway(4, func() (*EmbeddingsClient, error) {
		calls.Add(1)
		return NewEmbeddingsClient("http://localhost:1", "key", "m", 4, 32), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Warmup(context.Background())
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("init called %d times, want 1", got)
	}
}

func TestGatewayInitFailure(t *testing.T) {
	initErr := errors.New("model unavailable")
	g := NewGateway(4, func() (*EmbeddingsClient, error) {
		return nil, initErr
	})

	g.Warmup(context.Background())

	_, err := g.EmbedTexts(context.Background(), []string{"x"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("EmbedTexts() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestGatewayRetriesAfterInitFailure(t *testing.T) {
	var calls atomic.Int32
	g := NewGateway(4, func() (*EmbeddingsClient, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return NewEmbeddingsClient("http://localhost:1", "key", "m", 4, 32), nil
	})

	if _, err := g.EmbedTexts(context.Background(), []string{"x"}); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("first EmbedTexts() error = %v, want ErrEmbeddingUnavailable", err)
	}
	if err := g.init(); err != nil {
		t.Fatalf("init() after recovery = %v, want nil", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("init called %d times, want 2", got)
	}
}

func TestGatewayDimensionBeforeInit(t *testing.T) {
	g := NewGateway(768, func() (*EmbeddingsClient, error) {
		t.Fatal("init should not run for Dimension()")
		return nil, nil
	})
	if got := g.Dimension(); got != 768 {
		t.Errorf("Dimension() = %d, want 768", got)
	}
}
