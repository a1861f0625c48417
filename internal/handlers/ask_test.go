package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/auth"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/llm"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/rag"
	"github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage"
	storage_mocks "github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage/mocks"
)

type fakeEngine struct {
	answer *rag.Answer
	err    error
	gotReq rag.AskRequest
	owner  string
}

func (f *fakeEngine) Ask(ctx context.Context, ownerID string, req rag.AskRequest) (*rag.Answer, error) {
	f.owner = ownerID
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func askRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", "/ask", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithOwner(req.Context(), "owner-1"))
}

func TestAskHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := storage_mocks.NewMockDocumentStore(ctrl)
	engine := &fakeEngine{answer: &rag.Answer{
		Answer: "Forty-two [Source 1].",
		Sources: []rag.Citation{
			{DocumentID: "d1", Filename: "life.pdf", PageNumber: 7, ChunkText: "the answer", RelevanceScore: 0.0164},
		},
		Status: rag.StatusSuccess,
	}}
	h := NewAskHandler(engine, documents)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "  what is the answer?  "}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if engine.owner != "owner-1" {
		t.Errorf("owner = %q, want owner-1", engine.owner)
	}
	if engine.gotReq.Question != "what is the answer?" {
		t.Errorf("question = %q, want trimmed", engine.gotReq.Question)
	}

	var resp rag.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != rag.StatusSuccess || len(resp.Sources) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestAskHandlerEmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	documents := storage_mocks.NewMockDocumentStore(ctrl)
	h := NewAskHandler(&fakeEngine{}, documents)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "   "}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandlerScopeValidation(t *testing.T) {
	t.Run("unknown document", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		documents := storage_mocks.NewMockDocumentStore(ctrl)
		documents.EXPECT().GetByID(gomock.Any(), "missing", "owner-1").Return(nil, storage.ErrNotFound)
		h := NewAskHandler(&fakeEngine{}, documents)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "q", DocumentIDs: []string{"missing"}}))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("document still processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		documents := storage_mocks.NewMockDocumentStore(ctrl)
		documents.EXPECT().GetByID(gomock.Any(), "d1", "owner-1").
			Return(&storage.Document{ID: "d1", Status: storage.StatusProcessing}, nil)
		h := NewAskHandler(&fakeEngine{}, documents)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "q", DocumentIDs: []string{"d1"}}))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("errored document", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		documents := storage_mocks.NewMockDocumentStore(ctrl)
		documents.EXPECT().GetByID(gomock.Any(), "d1", "owner-1").
			Return(&storage.Document{ID: "d1", Status: storage.StatusError}, nil)
		h := NewAskHandler(&fakeEngine{}, documents)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "q", DocumentIDs: []string{"d1"}}))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestAskHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "embedding unavailable", err: fmt.Errorf("%w: down", llm.ErrEmbeddingUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "generation failed", err: fmt.Errorf("%w: bad status", llm.ErrGenerationFailed), wantStatus: http.StatusBadGateway},
		{name: "unexpected", err: fmt.Errorf("database exploded"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			documents := storage_mocks.NewMockDocumentStore(ctrl)
			h := NewAskHandler(&fakeEngine{err: tt.err}, documents)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, askRequest(t, rag.AskRequest{Question: "q"}))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
