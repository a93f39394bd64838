package internal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mariotoffia/goannoy/builder"
	"github.com/mariotoffia/goannoy/interfaces"
)

// DefaultAnnoyTrees is the forest size used when the index spec does not
// set one.
const DefaultAnnoyTrees = 16

var _ VectorIndex = (*AnnoyIndex)(nil)

// AnnoyIndex is the approximate backend, a goannoy angular forest built
// once over the embedding matrix. The angular metric orders candidates by
// cosine, so this backend serves the inner-product metric on normalized
// vectors; L2 requests are rejected at construction.
type AnnoyIndex struct {
	idx        interfaces.AnnoyIndex[float32, uint32]
	embeddings [][]float32
	dims       int
	boundary   Boundary
	opts       IndexOptions
	trees      int
}

func NewAnnoyIndex(embeddings [][]float32, dist Distance, opts IndexOptions) (*AnnoyIndex, error) {
	if dist != DistanceInnerProduct {
		return nil, fmt.Errorf("%w: annoy backend supports inner product only, got %s", ErrInvalidArgument, dist)
	}

	// Angular ordering matches inner-product ordering only on unit
	// vectors.
	opts.Normalize = true

	prepared, boundary, err := prepareEmbeddings(embeddings, &opts)
	if err != nil {
		return nil, err
	}

	trees, err := parseAnnoySpec(opts.Spec)
	if err != nil {
		return nil, err
	}

	dims := len(prepared[0])
	idx := builder.Index[float32, uint32]().
		AngularDistance(dims).
		UseMultiWorkerPolicy().
		MmapIndexAllocator().
		Build()

	for i, row := range prepared {
		idx.AddItem(uint32(i), row)
	}
	idx.Build(trees, -1)

	return &AnnoyIndex{
		idx:        idx,
		embeddings: prepared,
		dims:       dims,
		boundary:   boundary,
		opts:       opts,
		trees:      trees,
	}, nil
}

func (a *AnnoyIndex) Dims() int          { return a.dims }
func (a *AnnoyIndex) Distance() Distance { return DistanceInnerProduct }
func (a *AnnoyIndex) Boundary() Boundary { return a.boundary }
func (a *AnnoyIndex) BatchSize() int     { return a.opts.BatchSize }
func (a *AnnoyIndex) Data() [][]float32  { return a.embeddings }

func (a *AnnoyIndex) Describe() string {
	return fmt.Sprintf("annoy(trees=%d dims=%d n=%d)", a.trees, a.dims, len(a.embeddings))
}

// Search queries the forest per row, chunked to BatchSize. Scores are
// cosine similarities recovered from annoy's angular distances, already
// descending per the forest's best-first ordering.
func (a *AnnoyIndex) Search(ctx context.Context, queries [][]float32, k int) (InternalResult, error) {
	if err := validateQueries(queries, a.dims, k); err != nil {
		return InternalResult{}, err
	}

	result := InternalResult{
		Distances: make([][]float32, len(queries)),
		Indices:   make([][]int, len(queries)),
	}

	for _, span := range chunks(len(queries), a.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			return InternalResult{}, err
		}
		for qi := span[0]; qi < span[1]; qi++ {
			searchCtx := a.idx.CreateContext()
			ids, dists := a.idx.GetNnsByVector(l2Normalize(queries[qi]), k, -1, searchCtx)

			scores := make([]float32, k)
			indices := make([]int, k)
			for i := range indices {
				indices[i] = NoNeighbor
			}
			for i, id := range ids {
				if i >= k {
					break
				}
				indices[i] = int(id)
				if i < len(dists) {
					// Angular distance d = sqrt(2-2cos), so
					// cos = 1 - d^2/2 on unit vectors.
					scores[i] = 1 - dists[i]*dists[i]/2
				}
			}

			result.Distances[qi] = scores
			result.Indices[qi] = indices
		}
	}

	return result, nil
}

// parseAnnoySpec reads the opaque backend spec string. The annoy backend
// understands "trees=<n>"; an empty spec selects the default forest size.
func parseAnnoySpec(spec string) (int, error) {
	trees := DefaultAnnoyTrees

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) != "trees" {
			return 0, fmt.Errorf("%w: bad annoy spec %q", ErrInvalidArgument, spec)
		}

		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: bad annoy tree count %q", ErrInvalidArgument, value)
		}
		trees = n
	}

	return trees, nil
}
