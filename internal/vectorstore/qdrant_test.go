package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestNewQdrantStore(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid URL with port", "http://localhost:6333", false},
		{"valid URL without port", "http://localhost", false},
		{"valid remote URL", "http://qdrant.example.com:6333", false},
		{"empty URL defaults", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewQdrantStore(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("NewQdrantStore() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewQdrantStore() unexpected error: %v", err)
				return
			}
			if store == nil {
				t.Error("NewQdrantStore() returned nil store")
			}
		})
	}
}

func TestPayloadFromQdrant(t *testing.T) {
	raw := qdrant.NewValueMap(map[string]any{
		"document_id":   "doc-1",
		"owner_id":      "user-1",
		"chunk_index":   7,
		"sentence_text": "The anchor sentence.",
		"window_text":   "Before. The anchor sentence. After.",
		"page_number":   3,
	})

	p := payloadFromQdrant(raw)

	if p.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q, want doc-1", p.DocumentID)
	}
	if p.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q, want user-1", p.OwnerID)
	}
	if p.ChunkIndex != 7 {
		t.Errorf("ChunkIndex = %d, want 7", p.ChunkIndex)
	}
	if p.SentenceText != "The anchor sentence." {
		t.Errorf("SentenceText = %q", p.SentenceText)
	}
	if p.WindowText != "Before. The anchor sentence. After." {
		t.Errorf("WindowText = %q", p.WindowText)
	}
	if p.PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", p.PageNumber)
	}
}

func TestPayloadFromQdrantNil(t *testing.T) {
	p := payloadFromQdrant(nil)
	if p.DocumentID != "" || p.PageNumber != 0 {
		t.Errorf("payloadFromQdrant(nil) = %+v, want zero value", p)
	}
}
