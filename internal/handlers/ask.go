package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/contextutil"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/llm"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
)

// AskHandler handles question answering over a user's documents.
type AskHandler struct {
	engine    rag.Engine
	documents storage.DocumentStore
}

func NewAskHandler(engine rag.Engine, documents storage.DocumentStore) *AskHandler {
	return &AskHandler{engine: engine, documents: documents}
}

func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFromContext(r.Context())

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	// an explicit document scope must name existing, ready documents
	for _, docID := range req.DocumentIDs {
		doc, err := h.documents.GetByID(r.Context(), docID, ownerID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "document not found: "+docID)
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load document")
			return
		}
		if doc.Status != storage.StatusReady {
			writeError(w, http.StatusUnprocessableEntity, "document is not ready: "+docID)
			return
		}
	}

	answer, err := h.engine.Ask(r.Context(), ownerID, req)
	if err != nil {
		h.writeAskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (h *AskHandler) writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	logger := contextutil.LoggerFromContext(r.Context())
	switch {
	case errors.Is(err, llm.ErrEmbeddingUnavailable):
		logger.Error("embedding service unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "embedding service is unavailable")
	case errors.Is(err, llm.ErrGenerationFailed):
		logger.Error("answer generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "answer generation failed")
	default:
		logger.Error("ask failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
