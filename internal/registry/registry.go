// Package registry manages document lifecycle: registration, listing, and
// deletion over the vector index. Documents are immutable once indexed;
// registering the same content again always mints a fresh document ID.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/chunker"
	"github.com/askdocs/askdocs/internal/index"
)

// ErrEmptyDocument is returned when registration content yields no chunks.
var ErrEmptyDocument = errors.New("document content produced no chunks")

// Indexer is the slice of the vector index the registry needs.
type Indexer interface {
	Upsert(ctx context.Context, chunks []index.Chunk) error
	DeleteByDocument(documentID string) (int, error)
	ListDocuments() ([]index.DocumentSummary, error)
}

// Registry registers and removes documents in the index.
type Registry struct {
	index  Indexer
	logger *slog.Logger
}

// New creates a Registry over the given index.
func New(ix Indexer) *Registry {
	return &Registry{index: ix, logger: slog.Default()}
}

// Register chunks content, indexes the chunks under a fresh document ID,
// and returns that ID. Content that chunks to nothing (e.g. empty or
// whitespace-only text) is rejected with ErrEmptyDocument.
func (r *Registry) Register(ctx context.Context, title, content string) (string, int, error) {
	pieces, err := chunker.Split(strings.TrimSpace(content))
	if err != nil {
		return "", 0, fmt.Errorf("chunking document: %w", err)
	}
	if len(pieces) == 0 {
		return "", 0, ErrEmptyDocument
	}

	docID := "user_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	chunks := make([]index.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = index.Chunk{
			ID:            fmt.Sprintf("%s_chunk_%d", docID, i),
			DocumentID:    docID,
			DocumentTitle: title,
			Index:         i,
			Text:          text,
		}
	}

	if err := r.index.Upsert(ctx, chunks); err != nil {
		return "", 0, fmt.Errorf("indexing document %s: %w", docID, err)
	}

	r.logger.Info("document registered", "document_id", docID, "title", title, "chunks", len(chunks))
	return docID, len(chunks), nil
}

// List returns a summary of every registered document.
func (r *Registry) List() ([]index.DocumentSummary, error) {
	return r.index.ListDocuments()
}

// Delete removes all chunks of a document and returns how many were removed.
// Zero means the document was not found; callers map that to not-found
// rather than treating it as an error.
func (r *Registry) Delete(documentID string) (int, error) {
	n, err := r.index.DeleteByDocument(documentID)
	if err != nil {
		return 0, fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	if n > 0 {
		r.logger.Info("document deleted", "document_id", documentID, "chunks_removed", n)
	}
	return n, nil
}
