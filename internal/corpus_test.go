package internal

import (
	"context"
	"errors"
	"testing"
)

func newTestCorpus(t *testing.T) *Corpus {
	t.Helper()

	storage, err := NewMemoryStorage("qa", qaRecords())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	embedder, err := NewHashEmbedder(64)
	if err != nil {
		t.Fatalf("embedder: %v", err)
	}

	corpus, err := NewCorpus(context.Background(), BackendFlat, storage, embedder, "question", DistanceInnerProduct, DefaultIndexOptions)
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return corpus
}

func TestCorpusSearch(t *testing.T) {
	corpus := newTestCorpus(t)

	hits, err := corpus.Search(context.Background(), []string{"capital of italy"}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("queries = %d, want 1", len(hits))
	}
	if len(hits[0]) != 2 {
		t.Fatalf("matches = %d, want 2", len(hits[0]))
	}

	best := hits[0][0]
	if best.Record["answer"] != "rome" {
		t.Errorf("best match answer = %q, want rome", best.Record["answer"])
	}
	if best.Row < 0 || best.Row >= corpus.Storage().Len() {
		t.Errorf("best match row %d out of range", best.Row)
	}
}

func TestCorpusSearchDropsSentinels(t *testing.T) {
	corpus := newTestCorpus(t)

	// k exceeds corpus size; sentinel columns must not surface as matches.
	hits, err := corpus.Search(context.Background(), []string{"capital of spain"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits[0]) != corpus.Storage().Len() {
		t.Errorf("matches = %d, want %d", len(hits[0]), corpus.Storage().Len())
	}
	for _, m := range hits[0] {
		if m.Row == NoNeighbor {
			t.Error("sentinel row leaked into matches")
		}
	}
}

func TestCorpusSearchVectors(t *testing.T) {
	corpus := newTestCorpus(t)

	q, err := corpus.Embedder().Embed(context.Background(), "capital of france")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	res, err := corpus.SearchVectors(context.Background(), [][]float32{q}, 1)
	if err != nil {
		t.Fatalf("search vectors: %v", err)
	}
	if len(res.Indices) != 1 || len(res.Indices[0]) != 1 {
		t.Fatalf("unexpected result shape: %+v", res)
	}
	if res.Indices[0][0] != 0 {
		t.Errorf("nearest row = %d, want 0", res.Indices[0][0])
	}
}

func TestNewCorpusBadColumn(t *testing.T) {
	storage, _ := NewMemoryStorage("qa", qaRecords())
	embedder, _ := NewHashEmbedder(64)

	_, err := NewCorpus(context.Background(), BackendFlat, storage, embedder, "missing", DistanceInnerProduct, DefaultIndexOptions)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing column: expected ErrNotFound, got %v", err)
	}
}

func TestNewCorpusFromIndexMismatch(t *testing.T) {
	storage, _ := NewMemoryStorage("qa", qaRecords())
	embedder, _ := NewHashEmbedder(64)

	texts, _ := storage.Col("question")
	embeddings, _ := embedder.EmbedBatch(context.Background(), texts)
	index, err := NewVectorIndex(BackendFlat, embeddings, DistanceInnerProduct, DefaultIndexOptions)
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	narrow, _ := NewHashEmbedder(8)
	if _, err := NewCorpusFromIndex(index, narrow, storage); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("dims mismatch: expected ErrInvalidArgument, got %v", err)
	}

	short, _ := NewMemoryStorage("short", qaRecords()[:2])
	if _, err := NewCorpusFromIndex(index, embedder, short); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("rows mismatch: expected ErrInvalidArgument, got %v", err)
	}

	if _, err := NewCorpusFromIndex(nil, embedder, storage); !errors.Is(err, ErrNoIndex) {
		t.Errorf("nil index: expected ErrNoIndex, got %v", err)
	}

	if _, err := NewCorpusFromIndex(index, embedder, storage); err != nil {
		t.Errorf("matching index/storage: %v", err)
	}
}
