package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/contextutil"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/ingest"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore"
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"text": {},
	"md":   {},
}

// DocumentsHandler handles upload, listing, and deletion of documents.
type DocumentsHandler struct {
	documents      storage.DocumentStore
	chunks         storage.ChunkStore
	vectors        vectorstore.VectorStore
	orchestrator   *ingest.Orchestrator
	collection     string
	maxUploadBytes int64
}

func NewDocumentsHandler(documents storage.DocumentStore, chunks storage.ChunkStore, vectors vectorstore.VectorStore, orchestrator *ingest.Orchestrator, collection string, maxUploadBytes int64) *DocumentsHandler {
	return &DocumentsHandler{
		documents:      documents,
		chunks:         chunks,
		vectors:        vectors,
		orchestrator:   orchestrator,
		collection:     collection,
		maxUploadBytes: maxUploadBytes,
	}
}

// DocumentResponse is the public view of a document.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func documentResponse(d *storage.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		SizeBytes:  d.SizeBytes,
		Status:     d.Status,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
	}
}

// Upload accepts a multipart file, creates the document in processing
// state, and queues ingestion. The response returns before any processing
// happens; poll the document status for the outcome.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFromContext(r.Context())
	logger := contextutil.LoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		writeError(w, http.StatusBadRequest, "unsupported file type: only pdf, txt, text, and md are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	doc := &storage.Document{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Filename:  filename,
		SizeBytes: int64(len(data)),
		Status:    storage.StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.documents.Create(r.Context(), doc); err != nil {
		logger.Error("failed to create document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	if err := h.orchestrator.Submit(ingest.Job{Document: doc, Data: data}); err != nil {
		// the row exists but will never be processed; remove it
		if delErr := h.documents.Delete(r.Context(), doc.ID, ownerID); delErr != nil {
			logger.Error("failed to clean up unqueued document", "document_id", doc.ID, "error", delErr)
		}
		writeError(w, http.StatusServiceUnavailable, "ingestion queue is full, try again later")
		return
	}

	logger.Info("document queued", "document_id", doc.ID, "filename", filename, "size", len(data))
	writeJSON(w, http.StatusAccepted, documentResponse(doc))
}

// List returns the owner's documents, newest first.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFromContext(r.Context())

	docs, err := h.documents.ListByOwner(r.Context(), ownerID)
	if err != nil {
		contextutil.LoggerFromContext(r.Context()).Error("failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns a single document within the owner scope.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFromContext(r.Context())

	doc, err := h.documents.GetByID(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

// Delete removes a document, its chunk rows, and its vectors.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFromContext(r.Context())
	logger := contextutil.LoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if _, err := h.documents.GetByID(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	chunkIDs, err := h.chunks.ListIDsByDocument(r.Context(), id)
	if err != nil {
		logger.Error("failed to list chunk ids for delete", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if len(chunkIDs) > 0 {
		if err := h.vectors.Delete(r.Context(), h.collection, chunkIDs); err != nil {
			// best effort: a failed delete leaves orphaned vectors behind
			logger.Error("failed to delete vectors", "document_id", id, "error", err)
		}
	}

	if err := h.documents.Delete(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	logger.Info("document deleted", "document_id", id, "chunks", len(chunkIDs))
	w.WriteHeader(http.StatusNoContent)
}
