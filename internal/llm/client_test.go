package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		resp := ChatResponse{Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "  hello there  "}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "test-model", time.Second)

	got, err := client.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello there" {
		t.Errorf("Complete() = %q, want %q", got, "hello there")
	}
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "test-model", time.Second)

	_, err := client.Complete(context.Background(), "q")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Complete() error = %v, want ErrGenerationFailed", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "test-model", 50*time.Millisecond)

	_, err := client.Complete(context.Background(), "q")
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("Complete() error = %v, want ErrGenerationTimeout", err)
	}
}

func TestCompleteTimeoutMidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Headers and a partial body go out immediately; the rest never comes.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"`))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "test-model", 50*time.Millisecond)

	_, err := client.Complete(context.Background(), "q")
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("Complete() error = %v, want ErrGenerationTimeout", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "test-model", time.Second)

	_, err := client.Complete(context.Background(), "q")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Complete() error = %v, want ErrGenerationFailed", err)
	}
}
