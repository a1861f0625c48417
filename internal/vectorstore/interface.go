package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/vectorstore VectorStore

import "context"

// ChunkPayload is the chunk metadata stored alongside each vector so search
// results resolve to full chunks without a second lookup.
type ChunkPayload struct {
	DocumentID   string
	OwnerID      string
	ChunkIndex   int
	SentenceText string
	WindowText   string
	PageNumber   int
}

// Point represents a vector point with its chunk payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload ChunkPayload
}

// SearchResult represents a similarity search hit.
type SearchResult struct {
	ChunkID string
	Score   float32
	Payload ChunkPayload
}

// VectorStore defines the interface for vector index operations.
// Every search carries an owner scope; cross-owner hits are impossible
// by construction, not by post-filtering.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k most similar chunks within the owner scope,
	// optionally restricted to a document-id set, ordered by descending
	// cosine similarity.
	Search(ctx context.Context, collection string, query []float32, ownerID string, docIDs []string, k int) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
