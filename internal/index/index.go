package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Embedder produces embedding vectors for text. The LLM client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index combines an Embedder with the chunk Store. It owns the translation
// between raw chunk text and stored vectors.
type Index struct {
	store    *Store
	embedder Embedder
}

// New creates an Index over the given store and embedder.
func New(store *Store, embedder Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Upsert embeds any chunks lacking an embedding and writes the batch to the
// store. Chunks whose IDs already exist are overwritten. A provider failure
// aborts the batch before anything is written; a storage failure may leave
// the batch partially applied.
func (ix *Index) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrency to avoid overwhelming the provider.

	for i := range chunks {
		if chunks[i].Embedding != nil {
			continue
		}
		i := i
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gCtx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %s: %w", chunks[i].ID, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := ix.store.Upsert(chunks); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	return nil
}

// Query embeds text and returns up to k chunks ordered by descending
// similarity. An empty index yields an empty result without error; k is
// effectively clamped to the current chunk count by the search itself.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]ScoredChunk, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return ix.store.Search(vec, k)
}

// DeleteByDocument removes all chunks of a document, returning the count.
func (ix *Index) DeleteByDocument(documentID string) (int, error) {
	return ix.store.DeleteByDocument(documentID)
}

// Count returns the total number of stored chunks.
func (ix *Index) Count() (int, error) {
	return ix.store.Count()
}

// ListDocuments aggregates index contents per document.
func (ix *Index) ListDocuments() ([]DocumentSummary, error) {
	return ix.store.ListDocuments()
}
