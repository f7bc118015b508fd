// Package retrieval wraps the vector index with the fail-open search
// contract consumed by the agent pipeline: an empty index, a provider
// failure, or a storage failure all surface as an empty result set, never
// as an error. Diagnostics go to the structured log.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/askdocs/askdocs/internal/index"
)

// SearchResult is a read-only projection of a chunk plus its similarity
// score. Score is always in [0, 1].
type SearchResult struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Snippet       string  `json:"snippet"`
	Score         float32 `json:"score"`
}

// Querier is the slice of the vector index the retriever needs.
type Querier interface {
	Query(ctx context.Context, text string, k int) ([]index.ScoredChunk, error)
	Count() (int, error)
}

// Retriever performs similarity search over the index.
type Retriever struct {
	index  Querier
	logger *slog.Logger
}

// New creates a Retriever over the given index.
func New(q Querier) *Retriever {
	return &Retriever{index: q, logger: slog.Default()}
}

// Search returns up to limit results for query, ordered by descending score.
// Failures are absorbed: the caller always gets a (possibly empty) result
// set. This is the deliberate fail-open boundary between the pipeline and
// the index.
func (r *Retriever) Search(ctx context.Context, query string, limit int) []SearchResult {
	if limit <= 0 {
		return nil
	}

	chunks, err := r.index.Query(ctx, query, limit)
	if err != nil {
		r.logger.Warn("retrieval failed, returning no results", "error", err)
		return nil
	}

	results := make([]SearchResult, len(chunks))
	for i, c := range chunks {
		results[i] = SearchResult{
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			Snippet:       c.Text,
			Score:         c.Score,
		}
	}
	return results
}

// Count reports how many chunks the index currently holds. Failures are
// reported as zero so callers can treat the index as empty.
func (r *Retriever) Count() int {
	n, err := r.index.Count()
	if err != nil {
		r.logger.Warn("index count failed", "error", err)
		return 0
	}
	return n
}
