package storage

import "time"

// Document lifecycle states. A document is created in StatusProcessing at
// upload time and moves to StatusReady or StatusError exactly once.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// User represents a registered account.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string // bcrypt
	Name         string
	CreatedAt    time.Time
}

// Document represents an uploaded document owned by exactly one user.
type Document struct {
	ID         string // UUID
	OwnerID    string // UUID (foreign key to users.id)
	Filename   string
	SizeBytes  int64
	Status     string // processing | ready | error
	ChunkCount int    // derived, populated on reads
	CreatedAt  time.Time
}

// ChunkRecord is the atomic retrievable unit: one anchor sentence plus its
// surrounding window. Immutable once written; deleted only with its document.
// The embedding vector lives in the vector store under the same ID.
type ChunkRecord struct {
	ID             string // UUID (same as vector point ID)
	DocumentID     string // UUID (foreign key to documents.id)
	OwnerID        string // UUID, denormalized for owner-scoped queries
	ChunkIndex     int    // 0-based position within document, original sentence order
	SentenceText   string // anchor sentence, basis for embedding and lexical scoring
	WindowText     string // anchor ± N neighboring sentences, used as LLM context
	LexicalContent string // lowercased anchor text, tokenization basis
	PageNumber     int    // 1-based, 1 for non-paginated sources
}
