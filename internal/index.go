package internal

import (
	"context"
	"fmt"
)

// NoNeighbor is the sentinel row index filled into an InternalResult column
// when fewer than k neighbors exist.
const NoNeighbor = -1

// InternalResult is a batched nearest-neighbor result: one row per query,
// up to k columns per row, distances and indices kept parallel. Column
// order is the backend's native best-first ordering for the configured
// metric; downstream selection relies on column 0 being the best match.
type InternalResult struct {
	Distances [][]float32
	Indices   [][]int
}

// IndexBackend names a VectorIndex implementation. Backends are selected
// explicitly through configuration, never by runtime type inspection.
type IndexBackend string

const (
	BackendFlat  IndexBackend = "flat"
	BackendAnnoy IndexBackend = "annoy"
)

// LookupBackend resolves a backend name.
func LookupBackend(name string) (IndexBackend, error) {
	switch IndexBackend(name) {
	case BackendFlat, "":
		return BackendFlat, nil
	case BackendAnnoy:
		return BackendAnnoy, nil
	default:
		return "", fmt.Errorf("%w: unknown index backend %q", ErrInvalidArgument, name)
	}
}

// VectorIndex is a batched nearest-neighbor search over a fixed embedding
// matrix. Implementations are constructed once from the matrix and never
// mutated; Search may therefore be called concurrently.
type VectorIndex interface {
	// Search returns the k best matches for every query row. It fails with
	// ErrInvalidArgument when a query's width differs from Dims.
	Search(ctx context.Context, queries [][]float32, k int) (InternalResult, error)

	Dims() int
	Distance() Distance
	Boundary() Boundary
	BatchSize() int

	// Data exposes the indexed embedding matrix for callers that map
	// result indices back to stored vectors. Callers must not modify it.
	Data() [][]float32

	// Describe returns the stable descriptor used in run identities.
	Describe() string
}

// IndexOptions configures index construction, shared by all backends.
type IndexOptions struct {
	// Spec is an opaque backend-specific configuration string, passed
	// through unmodified (e.g. "trees=50" for the annoy backend).
	Spec string

	// Normalize L2-normalizes the embeddings before indexing. Required for
	// inner-product-as-cosine search.
	Normalize bool

	// BatchSize bounds how many query rows a single backend call sees.
	BatchSize int

	// Accelerator requests hardware acceleration where a backend supports
	// it. Absence changes latency only, never search semantics.
	Accelerator bool
}

// DefaultIndexOptions is the baseline configuration for new indexes.
var DefaultIndexOptions = IndexOptions{
	Normalize: true,
	BatchSize: 64,
}

// NewVectorIndex builds the configured backend over the embedding matrix.
func NewVectorIndex(backend IndexBackend, embeddings [][]float32, dist Distance, opts IndexOptions) (VectorIndex, error) {
	switch backend {
	case BackendFlat:
		return NewFlatIndex(embeddings, dist, opts)
	case BackendAnnoy:
		return NewAnnoyIndex(embeddings, dist, opts)
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", ErrInvalidArgument, backend)
	}
}

// prepareEmbeddings validates the shared construction contract and applies
// optional normalization. The returned matrix is a copy when normalization
// ran, the caller's otherwise.
func prepareEmbeddings(embeddings [][]float32, opts *IndexOptions) ([][]float32, Boundary, error) {
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, Boundary{}, fmt.Errorf("%w: empty embedding matrix", ErrInvalidArgument)
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultIndexOptions.BatchSize
	}
	if opts.BatchSize < 1 {
		return nil, Boundary{}, fmt.Errorf("%w: batch size %d", ErrInvalidArgument, opts.BatchSize)
	}

	if opts.Normalize {
		for i, row := range embeddings {
			for _, x := range row {
				if !isFinite(x) {
					return nil, Boundary{}, fmt.Errorf("%w: non-finite value in row %d", ErrInvalidArgument, i)
				}
			}
		}
		embeddings = NormalizeRows(embeddings)
	}

	boundary, err := ComputeBoundary(embeddings)
	if err != nil {
		return nil, Boundary{}, err
	}

	return embeddings, boundary, nil
}

func validateQueries(queries [][]float32, dims, k int) error {
	if k < 1 {
		return fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidArgument, k)
	}
	for i, q := range queries {
		if len(q) != dims {
			return fmt.Errorf("%w: query %d has %d dims, index has %d", ErrInvalidArgument, i, len(q), dims)
		}
	}
	return nil
}

// chunks yields [start, end) ranges of at most size over n items.
func chunks(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
