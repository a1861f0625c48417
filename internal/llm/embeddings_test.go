package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingsServer(t *testing.T, dim int, batchSizes *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if batchSizes != nil {
			*batchSizes = append(*batchSizes, len(req.Input))
		}

		resp := EmbeddingsResponse{Data: make([]EmbeddingData, len(req.Input))}
		for i := range req.Input {
			// Deliberately non-normalized so the client must normalize.
			vec := make([]float64, dim)
			vec[0] = 3.0
			vec[1] = 4.0
			resp.Data[i] = EmbeddingData{Embedding: vec}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedTexts(t *testing.T) {
	srv := embeddingsServer(t, 8, nil)
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "key", "test-model", 8, 32)

	vecs, err := client.EmbedTexts(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("EmbedTexts() returned %d vectors, want 2", len(vecs))
	}

	for _, vec := range vecs {
		if len(vec) != 8 {
			t.Fatalf("vector size = %d, want 8", len(vec))
		}
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		if math.Abs(sum-1.0) > 1e-5 {
			t.Errorf("vector not unit-normalized: squared norm = %f", sum)
		}
	}
}

func TestEmbedTextsBatching(t *testing.T) {
	var batches []int
	srv := embeddingsServer(t, 4, &batches)
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "key", "test-model", 4, 3)

	texts := []string{"a", "b", "c", "d", "e", "f", "g"}
	vecs, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("EmbedTexts() returned %d vectors, want %d", len(vecs), len(texts))
	}

	want := []int{3, 3, 1}
	if len(batches) != len(want) {
		t.Fatalf("got %d batches (%v), want %v", len(batches), batches, want)
	}
	for i := range want {
		if batches[i] != want[i] {
			t.Errorf("batch %d size = %d, want %d", i, batches[i], want[i])
		}
	}
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:1", "key", "m", 4, 32)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("EmbedTexts() expected error for empty input")
	}
}

func TestEmbedTextsDimensionMismatch(t *testing.T) {
	srv := embeddingsServer(t, 8, nil)
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "key", "test-model", 16, 32)

	if _, err := client.EmbedTexts(context.Background(), []string{"x"}); err == nil {
		t.Fatal("EmbedTexts() expected dimension mismatch error")
	}
}

func TestEmbedTextsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "key", "test-model", 4, 32)

	_, err := client.EmbedTexts(context.Background(), []string{"x"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("EmbedTexts() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	out := normalize([]float64{0, 0, 0})
	for i, v := range out {
		if v != 0 {
			t.Errorf("normalize(zero)[%d] = %f, want 0", i, v)
		}
	}
}
