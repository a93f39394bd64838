package internal

import (
	"context"
	"errors"
	"math"
	"testing"
)

var unitSquare = [][]float32{
	{0, 0},
	{1, 0},
	{0, 1},
	{1, 1},
}

func newFlat(t *testing.T, embeddings [][]float32, dist Distance, opts IndexOptions) *FlatIndex {
	t.Helper()

	idx, err := NewFlatIndex(embeddings, dist, opts)
	if err != nil {
		t.Fatalf("new flat index: %v", err)
	}
	return idx
}

func TestFlatIndexNearest(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{})

	res, err := idx.Search(context.Background(), [][]float32{{0.1, 0.1}}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if res.Indices[0][0] != 0 {
		t.Errorf("expected nearest index 0, got %d", res.Indices[0][0])
	}

	// Squared L2: 0.1^2 + 0.1^2.
	if math.Abs(float64(res.Distances[0][0])-0.02) > 1e-6 {
		t.Errorf("expected distance 0.02, got %v", res.Distances[0][0])
	}
}

func TestFlatIndexOrderingL2(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{})

	res, err := idx.Search(context.Background(), [][]float32{{0.2, 0.1}, {0.9, 0.8}}, 4)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for qi, dists := range res.Distances {
		for i := 1; i < len(dists); i++ {
			if dists[i] < dists[i-1] {
				t.Errorf("query %d: distances not non-decreasing: %v", qi, dists)
			}
		}
	}
}

func TestFlatIndexOrderingInnerProduct(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceInnerProduct, IndexOptions{Normalize: true})

	res, err := idx.Search(context.Background(), [][]float32{{0.7, 0.7}}, 4)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	scores := res.Distances[0]
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Errorf("scores not non-increasing: %v", scores)
		}
	}
}

func TestFlatIndexKBeyondN(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{})

	res, err := idx.Search(context.Background(), [][]float32{{0, 0}}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(res.Indices[0]) != 10 {
		t.Fatalf("expected 10 columns, got %d", len(res.Indices[0]))
	}

	valid := 0
	for _, id := range res.Indices[0] {
		if id != NoNeighbor {
			valid++
		}
	}
	if valid != len(unitSquare) {
		t.Errorf("expected %d valid entries, got %d", len(unitSquare), valid)
	}
	for _, id := range res.Indices[0][len(unitSquare):] {
		if id != NoNeighbor {
			t.Errorf("expected sentinel beyond N, got %d", id)
		}
	}
}

func TestFlatIndexBatching(t *testing.T) {
	// Batch size 1 forces one chunk per query; results must not depend
	// on chunking.
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{BatchSize: 1})

	queries := [][]float32{{0.1, 0.1}, {0.9, 0.1}, {0.1, 0.9}}
	res, err := idx.Search(context.Background(), queries, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []int{0, 1, 2}
	for qi, indices := range res.Indices {
		if indices[0] != want[qi] {
			t.Errorf("query %d: got %d, want %d", qi, indices[0], want[qi])
		}
	}
}

func TestFlatIndexInvalidConstruction(t *testing.T) {
	if _, err := NewFlatIndex(nil, DistanceL2, IndexOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty matrix: expected ErrInvalidArgument, got %v", err)
	}

	if _, err := NewFlatIndex(unitSquare, DistanceL2, IndexOptions{BatchSize: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative batch: expected ErrInvalidArgument, got %v", err)
	}

	bad := [][]float32{{1, float32(math.NaN())}}
	if _, err := NewFlatIndex(bad, DistanceInnerProduct, IndexOptions{Normalize: true}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("non-finite with normalize: expected ErrInvalidArgument, got %v", err)
	}
}

func TestFlatIndexInvalidSearch(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{})

	if _, err := idx.Search(context.Background(), [][]float32{{1, 2, 3}}, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("dimension mismatch: expected ErrInvalidArgument, got %v", err)
	}

	if _, err := idx.Search(context.Background(), [][]float32{{1, 2}}, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("k=0: expected ErrInvalidArgument, got %v", err)
	}
}

func TestFlatIndexProperties(t *testing.T) {
	idx := newFlat(t, unitSquare, DistanceL2, IndexOptions{BatchSize: 7})

	if idx.Dims() != 2 {
		t.Errorf("dims = %d, want 2", idx.Dims())
	}
	if idx.Distance() != DistanceL2 {
		t.Errorf("distance = %v, want l2", idx.Distance())
	}
	if idx.BatchSize() != 7 {
		t.Errorf("batch = %d, want 7", idx.BatchSize())
	}
	if idx.Boundary().Dims() != 2 {
		t.Errorf("boundary dims = %d, want 2", idx.Boundary().Dims())
	}
	if len(idx.Data()) != 4 {
		t.Errorf("data rows = %d, want 4", len(idx.Data()))
	}
}

func TestBoundaryDimsMatchForAllDistances(t *testing.T) {
	for _, dist := range []Distance{DistanceL2, DistanceInnerProduct} {
		idx := newFlat(t, unitSquare, dist, IndexOptions{Normalize: dist == DistanceInnerProduct})
		if idx.Boundary().Dims() != 2 {
			t.Errorf("%v: boundary dims = %d, want 2", dist, idx.Boundary().Dims())
		}
	}
}
