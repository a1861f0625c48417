package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/handlers"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/ingest"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	storage_mocks "github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage/mocks"
	vector_mocks "github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore/mocks"
)

type stubEngine struct{}

func (stubEngine) Ask(ctx context.Context, ownerID string, req rag.AskRequest) (*rag.Answer, error) {
	return &rag.Answer{Answer: "stub", Sources: []rag.Citation{}, Status: rag.StatusSuccess}, nil
}

func testRouter(t *testing.T) (http.Handler, *storage_mocks.MockDocumentStore, *auth.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := storage_mocks.NewMockUserStore(ctrl)
	documents := storage_mocks.NewMockDocumentStore(ctrl)
	chunks := storage_mocks.NewMockChunkStore(ctrl)
	vectors := vector_mocks.NewMockVectorStore(ctrl)
	tokens := auth.NewService([]byte("router-test-secret"), time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(&Deps{
		Logger:       logger,
		Users:        users,
		Documents:    documents,
		Chunks:       chunks,
		Vectors:      vectors,
		Orchestrator: ingest.NewOrchestrator(nil, documents, 0, 4, logger),
		Engine:       stubEngine{},
		Tokens:       tokens,
		HealthChecks: map[string]handlers.HealthCheck{
			"database": func(ctx context.Context) error { return nil },
		},
		Collection:     "chunks",
		MaxUploadBytes: 1 << 20,
	})
	return router, documents, tokens
}

func TestRouterHealthIsOpen(t *testing.T) {
	router, _, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	router, _, _ := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/documents/"},
		{"GET", "/documents/some-id"},
		{"DELETE", "/documents/some-id"},
		{"POST", "/documents/upload"},
		{"POST", "/ask"},
		{"GET", "/auth/me"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRouterAuthorizedFlow(t *testing.T) {
	router, documents, tokens := testRouter(t)

	token, err := tokens.IssueToken("owner-1")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	documents.EXPECT().ListByOwner(gomock.Any(), "owner-1").
		Return([]*storage.Document{{ID: "d1", Filename: "a.txt", Status: storage.StatusReady}}, nil)

	req := httptest.NewRequest("GET", "/documents/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var docs []handlers.DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &docs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "d1" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestRouterAsk(t *testing.T) {
	router, _, tokens := testRouter(t)

	token, err := tokens.IssueToken("owner-1")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	body, _ := json.Marshal(rag.AskRequest{Question: "what?"})
	req := httptest.NewRequest("POST", "/ask", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _, _ := testRouter(t)

	req := httptest.NewRequest("OPTIONS", "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
