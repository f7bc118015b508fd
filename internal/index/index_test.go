package index

import (
	"context"
	"errors"
	"testing"
)

// fakeEmbedder returns deterministic vectors derived from text length.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v := make([]float32, 8)
	for i := range v {
		v[i] = float32(len(text)%7+1) * float32(i+1) * 0.01
	}
	return v, nil
}

func TestIndexUpsertEmbedsAndStores(t *testing.T) {
	s := openTestStore(t)
	emb := &fakeEmbedder{}
	ix := New(s, emb)

	chunks := []Chunk{
		{ID: "d1_chunk_0", DocumentID: "d1", DocumentTitle: "T", Index: 0, Text: "first"},
		{ID: "d1_chunk_1", DocumentID: "d1", DocumentTitle: "T", Index: 1, Text: "second"},
	}
	if err := ix.Upsert(context.Background(), chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("embedder called %d times, want 2", emb.calls)
	}

	count, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestIndexUpsert_SkipsPreEmbeddedChunks(t *testing.T) {
	s := openTestStore(t)
	emb := &fakeEmbedder{}
	ix := New(s, emb)

	chunks := []Chunk{
		{ID: "d1_chunk_0", DocumentID: "d1", Text: "first", Embedding: makeTestVector(8, 0.1)},
	}
	if err := ix.Upsert(context.Background(), chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times, want 0", emb.calls)
	}
}

func TestIndexUpsert_ProviderFailureAbortsBatch(t *testing.T) {
	s := openTestStore(t)
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	ix := New(s, emb)

	err := ix.Upsert(context.Background(), []Chunk{
		{ID: "d1_chunk_0", DocumentID: "d1", Text: "first"},
	})
	if err == nil {
		t.Fatal("expected error from embedding failure")
	}

	count, _ := ix.Count()
	if count != 0 {
		t.Errorf("count = %d, want 0 (nothing written)", count)
	}
}

func TestIndexQuery(t *testing.T) {
	s := openTestStore(t)
	emb := &fakeEmbedder{}
	ix := New(s, emb)

	if err := ix.Upsert(context.Background(), []Chunk{
		{ID: "d1_chunk_0", DocumentID: "d1", DocumentTitle: "T", Text: "alpha"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := ix.Query(context.Background(), "alpha", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestIndexQuery_EmbedFailure(t *testing.T) {
	s := openTestStore(t)
	ix := New(s, &fakeEmbedder{err: errors.New("network down")})

	if _, err := ix.Query(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error; the retrieval layer is responsible for fail-open")
	}
}
