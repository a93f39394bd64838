package internal

import (
	"context"
	"fmt"
)

// MatchedRecord is an index hit mapped back to its storage row.
type MatchedRecord struct {
	Row    int
	Score  float32
	Record Record
}

// Corpus couples a vector index over corpus embeddings with the embedder
// that produced them and the storage holding the source records.
type Corpus struct {
	index    VectorIndex
	embedder Embedder
	storage  Storage
}

// NewCorpus builds the index over the embeddings of the given storage
// column.
func NewCorpus(ctx context.Context, backend IndexBackend, storage Storage, embedder Embedder, column string, dist Distance, opts IndexOptions) (*Corpus, error) {
	texts, err := storage.Col(column)
	if err != nil {
		return nil, fmt.Errorf("corpus column: %w", err)
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	index, err := NewVectorIndex(backend, embeddings, dist, opts)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return &Corpus{index: index, embedder: embedder, storage: storage}, nil
}

// NewCorpusFromIndex wires a prebuilt index to its storage and embedder.
// The index width must match what the embedder produces.
func NewCorpusFromIndex(index VectorIndex, embedder Embedder, storage Storage) (*Corpus, error) {
	if index == nil {
		return nil, ErrNoIndex
	}
	if index.Dims() != embedder.Dimension() {
		return nil, fmt.Errorf("%w: index dims %d != embedder dims %d", ErrInvalidArgument, index.Dims(), embedder.Dimension())
	}
	if len(index.Data()) != storage.Len() {
		return nil, fmt.Errorf("%w: index rows %d != storage rows %d", ErrInvalidArgument, len(index.Data()), storage.Len())
	}

	return &Corpus{index: index, embedder: embedder, storage: storage}, nil
}

func (c *Corpus) Index() VectorIndex { return c.index }
func (c *Corpus) Storage() Storage   { return c.storage }
func (c *Corpus) Embedder() Embedder { return c.embedder }

// SearchVectors runs a raw index-space search.
func (c *Corpus) SearchVectors(ctx context.Context, queries [][]float32, k int) (InternalResult, error) {
	return c.index.Search(ctx, queries, k)
}

// Search embeds the query texts and maps the index hits back to storage
// rows. Sentinel columns (no neighbor) are dropped.
func (c *Corpus) Search(ctx context.Context, texts []string, k int) ([][]MatchedRecord, error) {
	queries, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}

	res, err := c.index.Search(ctx, queries, k)
	if err != nil {
		return nil, err
	}

	out := make([][]MatchedRecord, len(res.Indices))
	for qi, indices := range res.Indices {
		matches := make([]MatchedRecord, 0, len(indices))
		for col, row := range indices {
			if row == NoNeighbor {
				continue
			}
			rec, err := c.storage.Row(row)
			if err != nil {
				return nil, err
			}
			matches = append(matches, MatchedRecord{
				Row:    row,
				Score:  res.Distances[qi][col],
				Record: rec,
			})
		}
		out[qi] = matches
	}

	return out, nil
}
