package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
)

// defaultBatchSize bounds the number of texts sent per embeddings request.
const defaultBatchSize = 32

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
// All returned vectors are validated against Dim and L2-normalized, so
// cosine similarity and dot product agree downstream.
type EmbeddingsClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dim       int // Expected vector size for validation
	BatchSize int
	client    *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// dim is the expected vector size (from EMBEDDING_DIM config); every vector
// returned by EmbedTexts is validated against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, dim, batchSize int) *EmbeddingsClient {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &EmbeddingsClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		Dim:       dim,
		BatchSize: batchSize,
		client:    http.DefaultClient,
	}
}

// Dimension returns the fixed system-wide embedding dimension.
func (c *EmbeddingsClient) Dimension() int {
	return c.Dim
}

// EmbeddingsRequest represents the request payload for the embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts, batching requests
// internally. Returns one unit-normalized float32 vector per input, in
// input order. Failures are wrapped as ErrEmbeddingUnavailable.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.BatchSize {
		end := start + c.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, vecs...)
	}
	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	body, err := json.Marshal(EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: bad status %d: %s", ErrEmbeddingUnavailable, resp.StatusCode, string(raw))
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrEmbeddingUnavailable, err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingUnavailable, len(texts), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.Dim {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.Dim)
		}
		result[i] = normalize(data.Embedding)
	}

	return result, nil
}

// normalize converts to float32 and L2-normalizes. Models that already emit
// unit vectors pass through unchanged (up to float precision).
func normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
