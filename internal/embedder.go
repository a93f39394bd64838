package internal

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// Embedder turns text into fixed-width vectors. Model-backed adapters live
// outside this package; the contract here is what the corpus and the run
// identity need.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Describe() string
	Close() error
}

var _ Embedder = (*HashEmbedder)(nil)

// HashEmbedder is a deterministic feature-hashing embedder: word unigrams
// and bigrams are hashed into a fixed-width vector, which is then
// L2-normalized. No model files, no network, identical output across runs,
// which makes it the built-in choice for offline use and hermetic tests.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) (*HashEmbedder, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("%w: embedder dimension %d", ErrInvalidArgument, dimension)
	}
	return &HashEmbedder{dimension: dimension}, nil
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	tokens := strings.Fields(strings.ToLower(text))
	for i, tok := range tokens {
		e.bump(vec, tok)
		if i+1 < len(tokens) {
			e.bump(vec, tok+" "+tokens[i+1])
		}
	}

	return l2Normalize(vec), nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// bump adds a signed unit count to the feature's hashed slot. A second
// hash picks the sign so collisions cancel in expectation rather than
// accumulate.
func (e *HashEmbedder) bump(vec []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	slot := int(sum % uint64(e.dimension))
	if sum&(1<<63) != 0 {
		vec[slot]--
	} else {
		vec[slot]++
	}
}

func (e *HashEmbedder) Dimension() int { return e.dimension }

func (e *HashEmbedder) Describe() string {
	return fmt.Sprintf("hash(dims=%d)", e.dimension)
}

func (e *HashEmbedder) Close() error { return nil }
