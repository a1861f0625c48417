package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// insertBatchSize bounds multi-row inserts to respect backend payload limits.
const insertBatchSize = 50

// ChunkStore defines the interface for chunk storage operations.
// All reads are scoped by owner.
type ChunkStore interface {
	// InsertChunks bulk-inserts chunk rows in bounded-size batches.
	// Chunks committed before a failing batch are not rolled back; the
	// returned count reports how many rows were written.
	InsertChunks(ctx context.Context, chunks []*ChunkRecord) (int, error)
	// ChunksForLexical returns all chunks visible to the given scope, up to
	// limit rows (0 means no limit), ordered by document and chunk index.
	ChunksForLexical(ctx context.Context, ownerID string, docIDs []string, limit int) ([]*ChunkRecord, error)
	// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertChunks bulk-inserts chunk rows in batches of insertBatchSize.
func (r *ChunkRepo) InsertChunks(ctx context.Context, chunks []*ChunkRecord) (int, error) {
	written := 0
	for start := 0; start < len(chunks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		var sb strings.Builder
		sb.WriteString("INSERT INTO chunks (id, document_id, owner_id, chunk_index, sentence_text, window_text, lexical_content, page_number) VALUES ")
		args := make([]any, 0, len(batch)*8)
		for i, c := range batch {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.ID, c.DocumentID, c.OwnerID, c.ChunkIndex,
				c.SentenceText, c.WindowText, c.LexicalContent, c.PageNumber)
		}

		if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return written, fmt.Errorf("failed to insert chunk batch at offset %d: %w", start, err)
		}
		written += len(batch)
	}
	return written, nil
}

// ChunksForLexical returns the owner's chunks, optionally restricted to a
// document-id set, for building the per-query lexical index.
func (r *ChunkRepo) ChunksForLexical(ctx context.Context, ownerID string, docIDs []string, limit int) ([]*ChunkRecord, error) {
	query := `SELECT id, document_id, owner_id, chunk_index, sentence_text, window_text, lexical_content, page_number
		FROM chunks WHERE owner_id = ?`
	args := []any{ownerID}

	if len(docIDs) > 0 {
		placeholders := strings.Repeat("?,", len(docIDs))
		query += " AND document_id IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range docIDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY document_id, chunk_index"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []*ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.OwnerID, &c.ChunkIndex,
			&c.SentenceText, &c.WindowText, &c.LexicalContent, &c.PageNumber); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to collect vector point IDs before a document delete.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}
