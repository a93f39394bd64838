package internal

import (
	"fmt"
	"math"
	"strings"
)

// Distance selects the metric an index searches under and fixes the
// interpretation of result ordering: lower is better for L2, higher is
// better for inner product.
type Distance string

const (
	DistanceL2           Distance = "l2"
	DistanceInnerProduct Distance = "ip"
)

func (d Distance) String() string {
	return string(d)
}

// LargerIsBetter reports whether a larger search score ranks ahead of a
// smaller one under this metric.
func (d Distance) LargerIsBetter() bool {
	return d == DistanceInnerProduct
}

// LookupDistance resolves a metric name to a Distance. Names are matched
// case-insensitively and common aliases are accepted.
func LookupDistance(name string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l2", "euclidean":
		return DistanceL2, nil
	case "ip", "inner_product", "innerproduct", "dot":
		return DistanceInnerProduct, nil
	default:
		return "", fmt.Errorf("%w: unknown distance %q", ErrInvalidArgument, name)
	}
}

// Boundary describes the per-dimension extent of an embedding set. It is
// computed once at index construction and immutable afterwards.
type Boundary struct {
	lower []float32
	upper []float32
}

func (b Boundary) Dims() int {
	return len(b.lower)
}

// Range returns the (min, max) pair for dimension i.
func (b Boundary) Range(i int) (float32, float32) {
	return b.lower[i], b.upper[i]
}

// Contains reports whether v lies inside the boundary in every dimension.
func (b Boundary) Contains(v []float32) bool {
	if len(v) != b.Dims() {
		return false
	}
	for i, x := range v {
		if x < b.lower[i] || x > b.upper[i] {
			return false
		}
	}
	return true
}

// Clamp returns a copy of v with every component clipped into the boundary.
func (b Boundary) Clamp(v []float32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		switch {
		case i >= b.Dims():
			out[i] = x
		case x < b.lower[i]:
			out[i] = b.lower[i]
		case x > b.upper[i]:
			out[i] = b.upper[i]
		default:
			out[i] = x
		}
	}
	return out
}

// ComputeBoundary returns the column-wise extrema of a non-empty embedding
// matrix.
func ComputeBoundary(embeddings [][]float32) (Boundary, error) {
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return Boundary{}, fmt.Errorf("%w: empty embedding matrix", ErrInvalidArgument)
	}

	dims := len(embeddings[0])
	lower := make([]float32, dims)
	upper := make([]float32, dims)
	copy(lower, embeddings[0])
	copy(upper, embeddings[0])

	for _, row := range embeddings[1:] {
		if len(row) != dims {
			return Boundary{}, fmt.Errorf("%w: ragged embedding matrix", ErrInvalidArgument)
		}
		for i, x := range row {
			if x < lower[i] {
				lower[i] = x
			}
			if x > upper[i] {
				upper[i] = x
			}
		}
	}

	return Boundary{lower: lower, upper: upper}, nil
}

// NormalizeRows returns a copy of the matrix with every row divided by its
// L2 norm. Rows with zero norm stay the zero vector; that is a documented
// degenerate case, not an error.
func NormalizeRows(embeddings [][]float32) [][]float32 {
	out := make([][]float32, len(embeddings))
	for i, row := range embeddings {
		out[i] = l2Normalize(row)
	}
	return out
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	result := make([]float32, len(vec))
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(result, vec)
		return result
	}

	for i, v := range vec {
		result[i] = float32(float64(v) / norm)
	}
	return result
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func isFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
