package rag

// Answer statuses. A question that matched no indexed content is a normal
// outcome, not an error.
const (
	StatusSuccess   = "success"
	StatusNoContext = "no_context"
)

// AskRequest is a question scoped to an owner's corpus, optionally narrowed
// to a subset of documents.
type AskRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// Citation points at a chunk that contributed to an answer.
type Citation struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	PageNumber     int     `json:"page_number"`
	ChunkText      string  `json:"chunk_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is the generated response plus its supporting citations.
type Answer struct {
	Answer  string     `json:"answer"`
	Sources []Citation `json:"sources"`
	Status  string     `json:"status"`
}
