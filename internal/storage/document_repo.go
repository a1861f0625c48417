package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks github.com/Nishanth-nishu/Smart-Document-Q-A-System/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DocumentStore defines the interface for document storage operations.
// Every read and delete is scoped by owner so cross-owner access is
// structurally impossible.
type DocumentStore interface {
	// Create inserts a new document in processing state.
	Create(ctx context.Context, doc *Document) error
	// GetByID gets a document by ID within an owner scope. Returns ErrNotFound
	// if the document does not exist or belongs to another owner.
	GetByID(ctx context.Context, id, ownerID string) (*Document, error)
	// ListByOwner returns all documents for an owner, newest first, with chunk counts.
	ListByOwner(ctx context.Context, ownerID string) ([]*Document, error)
	// UpdateStatus sets the document status.
	UpdateStatus(ctx context.Context, id, status string) error
	// Delete removes a document (chunks cascade). Returns ErrNotFound if the
	// document does not exist or belongs to another owner.
	Delete(ctx context.Context, id, ownerID string) error
	// FilenamesFor maps document IDs to filenames for citation display.
	FilenamesFor(ctx context.Context, ids []string) (map[string]string, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts a new document. The doc.ID must be set (UUID) before calling.
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) error {
	if doc.Status == "" {
		doc.Status = StatusProcessing
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, owner_id, filename, size_bytes, status) VALUES (?, ?, ?, ?, ?)",
		doc.ID, doc.OwnerID, doc.Filename, doc.SizeBytes, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by ID within an owner scope.
func (r *DocumentRepo) GetByID(ctx context.Context, id, ownerID string) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx,
		`SELECT d.id, d.owner_id, d.filename, d.size_bytes, d.status, d.created_at,
			(SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id)
		 FROM documents d WHERE d.id = ? AND d.owner_id = ?`,
		id, ownerID,
	).Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.SizeBytes, &doc.Status, &doc.CreatedAt, &doc.ChunkCount)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// ListByOwner returns all documents for an owner, newest first.
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.owner_id, d.filename, d.size_bytes, d.status, d.created_at,
			(SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id)
		 FROM documents d WHERE d.owner_id = ? ORDER BY d.created_at DESC, d.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.SizeBytes, &doc.Status, &doc.CreatedAt, &doc.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// UpdateStatus sets the document status.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = ? WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// Delete removes a document; its chunks are removed by the FK cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// FilenamesFor maps document IDs to filenames.
func (r *DocumentRepo) FilenamesFor(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename FROM documents WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query filenames: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id, filename string
		if err := rows.Scan(&id, &filename); err != nil {
			return nil, fmt.Errorf("failed to scan filename: %w", err)
		}
		result[id] = filename
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}
