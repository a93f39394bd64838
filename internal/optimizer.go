package internal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
)

// Optimizer is a stateful stepping process over a corpus. Step performs
// one unit of work: select or generate query points, search the index,
// score the matched rows, and return row -> score for this step.
//
// Step returns ErrExhausted once no further work remains; like io.EOF this
// is the expected terminal signal, not a failure. Any other error is fatal
// for the run. Given the same corpus and seed, the sequence of step
// results is deterministic.
type Optimizer interface {
	Step(ctx context.Context) (map[int]float64, error)

	// Describe returns the stable descriptor used in run identities.
	Describe() string
}

var _ Optimizer = (*SweepOptimizer)(nil)

// SweepOptimizer evaluates the whole corpus, one index batch per step, in
// row order. It exhausts after the final batch.
type SweepOptimizer struct {
	corpus  *Corpus
	adaptor Adaptor
	next    int
}

func NewSweepOptimizer(corpus *Corpus, adaptor Adaptor) *SweepOptimizer {
	return &SweepOptimizer{corpus: corpus, adaptor: adaptor}
}

func (o *SweepOptimizer) Step(ctx context.Context) (map[int]float64, error) {
	total := o.corpus.Storage().Len()
	if o.next >= total {
		return nil, ErrExhausted
	}

	end := o.next + o.corpus.Index().BatchSize()
	if end > total {
		end = total
	}

	rows := make([]int, 0, end-o.next)
	for row := o.next; row < end; row++ {
		rows = append(rows, row)
	}
	o.next = end

	return evaluateRows(ctx, o.adaptor, o.corpus.Storage(), rows)
}

func (o *SweepOptimizer) Describe() string {
	return fmt.Sprintf("sweep(batch=%d adaptor=%s)", o.corpus.Index().BatchSize(), o.adaptor.Describe())
}

// RandomOptimizerOptions configures NewRandomOptimizer.
type RandomOptimizerOptions struct {
	Seed    uint64
	Samples int // query points drawn per step
	K       int // neighbors evaluated per query point
	Steps   int // total step budget before exhaustion
}

var _ Optimizer = (*RandomOptimizer)(nil)

// RandomOptimizer probes the index with uniform samples drawn inside the
// boundary, evaluating the neighbors of each sample. It exhausts once its
// step budget is spent.
type RandomOptimizer struct {
	corpus  *Corpus
	adaptor Adaptor
	rng     *rand.Rand
	opts    RandomOptimizerOptions
	taken   int
}

func NewRandomOptimizer(corpus *Corpus, adaptor Adaptor, opts RandomOptimizerOptions) (*RandomOptimizer, error) {
	if opts.Samples < 1 || opts.K < 1 || opts.Steps < 1 {
		return nil, fmt.Errorf("%w: samples, k and steps must be >= 1", ErrInvalidArgument)
	}

	return &RandomOptimizer{
		corpus:  corpus,
		adaptor: adaptor,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
		opts:    opts,
	}, nil
}

func (o *RandomOptimizer) Step(ctx context.Context) (map[int]float64, error) {
	if o.taken >= o.opts.Steps {
		return nil, ErrExhausted
	}
	o.taken++

	boundary := o.corpus.Index().Boundary()
	queries := make([][]float32, o.opts.Samples)
	for i := range queries {
		queries[i] = uniformPoint(o.rng, boundary)
	}

	rows, err := searchRows(ctx, o.corpus, queries, o.opts.K)
	if err != nil {
		return nil, err
	}

	return evaluateRows(ctx, o.adaptor, o.corpus.Storage(), rows)
}

func (o *RandomOptimizer) Describe() string {
	return fmt.Sprintf("random(seed=%d samples=%d k=%d steps=%d adaptor=%s)",
		o.opts.Seed, o.opts.Samples, o.opts.K, o.opts.Steps, o.adaptor.Describe())
}

// AscentOptimizerOptions configures NewAscentOptimizer.
type AscentOptimizerOptions struct {
	Seed      uint64
	Proposals int     // neighbor proposals per step
	K         int     // neighbors evaluated per proposal
	Patience  int     // non-improving steps tolerated before exhaustion
	Scale     float64 // proposal spread as a fraction of each dimension's range
}

var _ Optimizer = (*AscentOptimizer)(nil)

// AscentOptimizer is a greedy hill climb through the embedding space. Each
// step perturbs the incumbent point, evaluates the corpus rows near every
// proposal, and moves to the best proposal if it improves on the
// incumbent. It exhausts after Patience consecutive non-improving steps.
type AscentOptimizer struct {
	corpus  *Corpus
	adaptor Adaptor
	rng     *rand.Rand
	opts    AscentOptimizerOptions

	current   []float32
	bestScore float64
	scored    bool
	misses    int
}

func NewAscentOptimizer(corpus *Corpus, adaptor Adaptor, opts AscentOptimizerOptions) (*AscentOptimizer, error) {
	if opts.Proposals < 1 || opts.K < 1 || opts.Patience < 1 {
		return nil, fmt.Errorf("%w: proposals, k and patience must be >= 1", ErrInvalidArgument)
	}
	if opts.Scale <= 0 {
		opts.Scale = 0.1
	}

	return &AscentOptimizer{
		corpus:  corpus,
		adaptor: adaptor,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
		opts:    opts,
	}, nil
}

func (o *AscentOptimizer) Step(ctx context.Context) (map[int]float64, error) {
	if o.misses >= o.opts.Patience {
		return nil, ErrExhausted
	}

	boundary := o.corpus.Index().Boundary()
	if o.current == nil {
		o.current = uniformPoint(o.rng, boundary)
	}

	queries := make([][]float32, 0, o.opts.Proposals+1)
	queries = append(queries, o.current)
	for i := 0; i < o.opts.Proposals; i++ {
		queries = append(queries, o.perturb(boundary))
	}

	res, err := o.corpus.Index().Search(ctx, queries, o.opts.K)
	if err != nil {
		return nil, err
	}

	rows := uniqueRows(res.Indices)
	scores, err := evaluateRows(ctx, o.adaptor, o.corpus.Storage(), rows)
	if err != nil {
		return nil, err
	}

	// The winning proposal is the one whose best neighbor scored highest.
	improved := false
	for qi, indices := range res.Indices {
		for _, row := range indices {
			if row == NoNeighbor {
				continue
			}
			score, ok := scores[row]
			if !ok {
				continue
			}
			if !o.scored || score > o.bestScore {
				o.bestScore = score
				o.current = queries[qi]
				o.scored = true
				improved = true
			}
		}
	}

	if improved {
		o.misses = 0
	} else {
		o.misses++
	}

	return scores, nil
}

func (o *AscentOptimizer) perturb(boundary Boundary) []float32 {
	out := make([]float32, len(o.current))
	for i, x := range o.current {
		lo, hi := boundary.Range(i)
		spread := float64(hi-lo) * o.opts.Scale
		out[i] = x + float32(o.rng.NormFloat64()*spread)
	}
	return boundary.Clamp(out)
}

func (o *AscentOptimizer) Describe() string {
	return fmt.Sprintf("ascent(seed=%d proposals=%d k=%d patience=%d scale=%g adaptor=%s)",
		o.opts.Seed, o.opts.Proposals, o.opts.K, o.opts.Patience, o.opts.Scale, o.adaptor.Describe())
}

// helpers shared by the optimizers

func uniformPoint(rng *rand.Rand, boundary Boundary) []float32 {
	point := make([]float32, boundary.Dims())
	for i := range point {
		lo, hi := boundary.Range(i)
		point[i] = lo + float32(rng.Float64())*(hi-lo)
	}
	return point
}

// searchRows searches the index and returns the deduplicated, sorted set
// of matched rows.
func searchRows(ctx context.Context, corpus *Corpus, queries [][]float32, k int) ([]int, error) {
	res, err := corpus.Index().Search(ctx, queries, k)
	if err != nil {
		return nil, err
	}
	return uniqueRows(res.Indices), nil
}

func uniqueRows(indices [][]int) []int {
	seen := map[int]bool{}
	for _, row := range indices {
		for _, id := range row {
			if id != NoNeighbor {
				seen[id] = true
			}
		}
	}

	rows := make([]int, 0, len(seen))
	for id := range seen {
		rows = append(rows, id)
	}
	sort.Ints(rows)
	return rows
}

func evaluateRows(ctx context.Context, adaptor Adaptor, storage Storage, rows []int) (map[int]float64, error) {
	scores, err := adaptor.Evaluate(ctx, storage, rows)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	out := make(map[int]float64, len(rows))
	for i, row := range rows {
		out[row] = scores[i]
	}
	return out, nil
}
