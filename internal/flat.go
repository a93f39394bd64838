package internal

import (
	"container/heap"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var _ VectorIndex = (*FlatIndex)(nil)

// FlatIndex is the exact brute-force backend: every search scans the full
// embedding matrix. O(N*D) per query, but the reference for correctness
// against which approximate backends are judged.
type FlatIndex struct {
	embeddings [][]float32
	dims       int
	dist       Distance
	boundary   Boundary
	opts       IndexOptions
}

func NewFlatIndex(embeddings [][]float32, dist Distance, opts IndexOptions) (*FlatIndex, error) {
	prepared, boundary, err := prepareEmbeddings(embeddings, &opts)
	if err != nil {
		return nil, err
	}

	return &FlatIndex{
		embeddings: prepared,
		dims:       len(prepared[0]),
		dist:       dist,
		boundary:   boundary,
		opts:       opts,
	}, nil
}

func (f *FlatIndex) Dims() int          { return f.dims }
func (f *FlatIndex) Distance() Distance { return f.dist }
func (f *FlatIndex) Boundary() Boundary { return f.boundary }
func (f *FlatIndex) BatchSize() int     { return f.opts.BatchSize }
func (f *FlatIndex) Data() [][]float32  { return f.embeddings }

func (f *FlatIndex) Describe() string {
	return fmt.Sprintf("flat(dist=%s dims=%d n=%d)", f.dist, f.dims, len(f.embeddings))
}

// Search scans the matrix for each query, chunking queries into groups of
// at most BatchSize and searching chunks in parallel. Result columns are
// best-first: ascending distance for L2, descending score for inner
// product.
func (f *FlatIndex) Search(ctx context.Context, queries [][]float32, k int) (InternalResult, error) {
	if err := validateQueries(queries, f.dims, k); err != nil {
		return InternalResult{}, err
	}

	result := InternalResult{
		Distances: make([][]float32, len(queries)),
		Indices:   make([][]int, len(queries)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, span := range chunks(len(queries), f.opts.BatchSize) {
		start, end := span[0], span[1]
		g.Go(func() error {
			for qi := start; qi < end; qi++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				dists, ids := f.searchOne(queries[qi], k)
				result.Distances[qi] = dists
				result.Indices[qi] = ids
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return InternalResult{}, err
	}

	return result, nil
}

func (f *FlatIndex) searchOne(query []float32, k int) ([]float32, []int) {
	// Bounded min/max-heap keyed so the heap root is the worst of the
	// current top-k and can be evicted cheaply.
	h := candidateHeap{larger: f.dist.LargerIsBetter()}
	heap.Init(&h)

	for id, row := range f.embeddings {
		var score float32
		switch f.dist {
		case DistanceInnerProduct:
			score = dot(query, row)
		default:
			score = squaredL2(query, row)
		}

		if h.Len() < k {
			heap.Push(&h, candidate{id: id, score: score})
			continue
		}
		if h.better(score, h.items[0].score) {
			h.items[0] = candidate{id: id, score: score}
			heap.Fix(&h, 0)
		}
	}

	found := h.Len()
	dists := make([]float32, k)
	ids := make([]int, k)
	for i := range ids {
		ids[i] = NoNeighbor
	}

	// Pop evicts worst-first; fill the row back to front.
	for i := found - 1; i >= 0; i-- {
		c := heap.Pop(&h).(candidate)
		dists[i] = c.score
		ids[i] = c.id
	}

	return dists, ids
}

type candidate struct {
	id    int
	score float32
}

// candidateHeap keeps the current top-k with the worst candidate at the
// root.
type candidateHeap struct {
	items  []candidate
	larger bool
}

// better reports whether score a ranks ahead of score b under the metric.
func (h *candidateHeap) better(a, b float32) bool {
	if h.larger {
		return a > b
	}
	return a < b
}

func (h *candidateHeap) Len() int { return len(h.items) }

func (h *candidateHeap) Less(i, j int) bool {
	// Worst at the root.
	return h.better(h.items[j].score, h.items[i].score)
}

func (h *candidateHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *candidateHeap) Push(x any) { h.items = append(h.items, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}
