package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	storage_mocks "github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage/mocks"
	vector_mocks "github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// statusWaiter captures the terminal status written for a document.
type statusWaiter struct {
	mu     sync.Mutex
	status string
	done   chan struct{}
}

func newStatusWaiter() *statusWaiter {
	return &statusWaiter{done: make(chan struct{})}
}

func (w *statusWaiter) set(status string) {
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
	close(w.done)
}

func (w *statusWaiter) wait(t *testing.T) string {
	t.Helper()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for status update")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func TestOrchestratorProcessesToReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	chunks := storage_mocks.NewMockChunkStore(ctrl)
	vectors := vector_mocks.NewMockVectorStore(ctrl)
	documents := storage_mocks.NewMockDocumentStore(ctrl)

	chunks.EXPECT().InsertChunks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, recs []*storage.ChunkRecord) (int, error) {
			return len(recs), nil
		})
	vectors.EXPECT().Upsert(gomock.Any(), "chunks", gomock.Any()).Return(nil)

	waiter := newStatusWaiter()
	documents.EXPECT().UpdateStatus(gomock.Any(), "doc-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, status string) error {
			waiter.set(status)
			return nil
		})

	extractor := &fakeExtractor{pages: []string{"A sentence well past the length threshold here."}}
	pipeline := NewPipeline(extractor, rag.NewChunker(2, 21), &fakeEmbedder{dim: 4}, chunks, vectors, "chunks")
	o := NewOrchestrator(pipeline, documents, 2, 8, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	if err := o.Submit(Job{Document: testDoc(), Data: []byte("raw")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got := waiter.wait(t); got != storage.StatusReady {
		t.Errorf("status = %q, want ready", got)
	}
}

func TestOrchestratorMarksErrorOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	chunks := storage_mocks.NewMockChunkStore(ctrl)
	vectors := vector_mocks.NewMockVectorStore(ctrl)
	documents := storage_mocks.NewMockDocumentStore(ctrl)

	waiter := newStatusWaiter()
	documents.EXPECT().UpdateStatus(gomock.Any(), "doc-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, status string) error {
			waiter.set(status)
			return nil
		})

	extractor := &fakeExtractor{err: errors.New("corrupt file")}
	pipeline := NewPipeline(extractor, rag.NewChunker(2, 21), &fakeEmbedder{dim: 4}, chunks, vectors, "chunks")
	o := NewOrchestrator(pipeline, documents, 1, 8, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	if err := o.Submit(Job{Document: testDoc(), Data: []byte("raw")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got := waiter.wait(t); got != storage.StatusError {
		t.Errorf("status = %q, want error", got)
	}
}

type panickyExtractor struct{}

func (panickyExtractor) ExtractPages(ctx context.Context, data []byte, filename string) ([]string, error) {
	panic("boom")
}

func TestOrchestratorContainsPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	chunks := storage_mocks.NewMockChunkStore(ctrl)
	vectors := vector_mocks.NewMockVectorStore(ctrl)
	documents := storage_mocks.NewMockDocumentStore(ctrl)

	waiter := newStatusWaiter()
	documents.EXPECT().UpdateStatus(gomock.Any(), "doc-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, status string) error {
			waiter.set(status)
			return nil
		})

	pipeline := NewPipeline(panickyExtractor{}, rag.NewChunker(2, 21), &fakeEmbedder{dim: 4}, chunks, vectors, "chunks")
	o := NewOrchestrator(pipeline, documents, 1, 8, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	if err := o.Submit(Job{Document: testDoc(), Data: []byte("raw")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// a panicking job still lands on error status, and the worker survives
	if got := waiter.wait(t); got != storage.StatusError {
		t.Errorf("status = %q, want error", got)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	chunks := storage_mocks.NewMockChunkStore(ctrl)
	vectors := vector_mocks.NewMockVectorStore(ctrl)
	documents := storage_mocks.NewMockDocumentStore(ctrl)

	extractor := &fakeExtractor{pages: nil}
	pipeline := NewPipeline(extractor, rag.NewChunker(2, 21), &fakeEmbedder{dim: 4}, chunks, vectors, "chunks")
	// no workers started: the queue fills and stays full
	o := NewOrchestrator(pipeline, documents, 0, 1, discardLogger())

	if err := o.Submit(Job{Document: testDoc()}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if err := o.Submit(Job{Document: testDoc()}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Submit() error = %v, want ErrQueueFull", err)
	}
}
