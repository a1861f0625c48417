package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/contextutil"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
)

// ErrQueueFull is returned when the ingestion queue cannot accept more work.
var ErrQueueFull = errors.New("ingestion queue is full")

// Job is one queued ingestion: the document row already exists in
// processing state, and the raw bytes ride along in memory.
type Job struct {
	Document *storage.Document
	Data     []byte
}

// Orchestrator runs ingestion jobs on a bounded worker pool. Upload
// handlers enqueue and return immediately; the document status is the only
// signal of completion.
type Orchestrator struct {
	pipeline  *Pipeline
	documents storage.DocumentStore
	logger    *slog.Logger

	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

func NewOrchestrator(pipeline *Pipeline, documents storage.DocumentStore, workers, queueSize int, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline:  pipeline,
		documents: documents,
		logger:    logger,
		jobs:      make(chan Job, queueSize),
		workers:   workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is canceled.
func (o *Orchestrator) Start(ctx context.Context) {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func(id int) {
			defer o.wg.Done()
			o.worker(ctx, id)
		}(i)
	}
}

// Wait blocks until all workers have exited.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Submit enqueues a job without blocking. Returns ErrQueueFull when the
// queue is at capacity; the caller should surface this to the uploader.
func (o *Orchestrator) Submit(job Job) error {
	select {
	case o.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (o *Orchestrator) worker(ctx context.Context, id int) {
	logger := o.logger.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-o.jobs:
			o.process(contextutil.WithLogger(ctx, logger), job)
		}
	}
}

// process runs one job to a terminal document status. Panics in the
// pipeline are contained to the job.
func (o *Orchestrator) process(ctx context.Context, job Job) {
	logger := contextutil.LoggerFromContext(ctx).With("document_id", job.Document.ID, "filename", job.Document.Filename)
	ctx = contextutil.WithLogger(ctx, logger)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("ingestion panicked: %v", r)
			}
		}()
		_, err = o.pipeline.Ingest(ctx, job.Document, job.Data)
		return err
	}()

	status := storage.StatusReady
	if err != nil {
		status = storage.StatusError
		logger.Error("ingestion failed", "error", err)
	}

	if updateErr := o.documents.UpdateStatus(ctx, job.Document.ID, status); updateErr != nil {
		logger.Error("failed to update document status", "status", status, "error", updateErr)
	} else if err == nil {
		logger.Info("document ready")
	}
}
