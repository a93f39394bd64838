package internal

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the format of the start-time identity column.
const TimeLayout = "2006-01-02-15-04-05"

// identitySep joins the descriptor tuple before hashing. Changing it
// changes every run identity, so it is fixed.
const identitySep = " "

// ManagerOption configures NewManager.
type ManagerOption func(*Manager)

// WithProgress installs an observer invoked after every completed step
// with the number of steps taken so far.
func WithProgress(fn func(step int)) ManagerOption {
	return func(m *Manager) { m.progress = fn }
}

// WithHistory makes Save record every persisted run in the results
// directory's run history.
func WithHistory(h *RunHistory) ManagerOption {
	return func(m *Manager) { m.history = h }
}

// WithStartTime overrides the recorded start time. Intended for tests that
// need identity determinism across managers.
func WithStartTime(t time.Time) ManagerOption {
	return func(m *Manager) { m.start = t.Format(TimeLayout) }
}

// Manager drives an optimizer to exhaustion, aggregates its step results,
// and persists the scored table under the run's content identity so that
// identical configurations deduplicate and distinct ones never collide.
type Manager struct {
	dir      string
	start    string
	progress func(step int)
	history  *RunHistory
}

// NewManager creates a manager. dir may be empty, in which case Save
// fails with ErrInvalidState; otherwise it is created if missing.
func NewManager(dir string, opts ...ManagerOption) (*Manager, error) {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidArgument, dir)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	m := &Manager{
		dir:   dir,
		start: time.Now().Format(TimeLayout),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// StartTime returns the recorded start time string used in identities.
func (m *Manager) StartTime() string { return m.start }

// Run steps the optimizer until it exhausts or the steps budget is spent,
// whichever happens first; steps <= 0 means no budget. Step results merge
// last-write-wins per row; every reported row must name a corpus record,
// so the row column of the returned table joins directly against the
// corpus storage (the descriptor columns carrying the rest of the corpus
// metadata are added at save time by WithIdentifierCols). A fatal step
// error aborts the run with nothing persisted.
func (m *Manager) Run(ctx context.Context, optimizer Optimizer, corpus *Corpus, steps int) (*ResultTable, error) {
	accumulated := map[int]float64{}
	total := corpus.Storage().Len()

	for step := 1; steps <= 0 || step <= steps; step++ {
		results, err := optimizer.Step(ctx)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		for row, score := range results {
			if row < 0 || row >= total {
				return nil, fmt.Errorf("%w: step %d scored row %d outside corpus [0, %d)", ErrInvalidState, step, row, total)
			}
			accumulated[row] = score
		}
		if m.progress != nil {
			m.progress(step)
		}
	}

	rows := make([]int, 0, len(accumulated))
	for row := range accumulated {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	table := NewResultTable(ColRow, ColScore)
	for _, row := range rows {
		err := table.AppendRow(
			strconv.Itoa(row),
			strconv.FormatFloat(accumulated[row], 'g', -1, 64),
		)
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// WithIdentifierCols computes the run identity and returns it along with a
// copy of the table extended by the identity and descriptor columns. The
// input table is not modified.
func (m *Manager) WithIdentifierCols(table *ResultTable, optimizer Optimizer, corpus *Corpus, model Provider, adaptor Adaptor, embedder Embedder) (string, *ResultTable) {
	identity := Identity(optimizer, corpus, model, adaptor, embedder, m.start)

	out := table.
		WithConstColumn(ColOptimizer, optimizer.Describe()).
		WithConstColumn(ColModel, model.Describe()).
		WithConstColumn(ColAdaptor, adaptor.Describe()).
		WithConstColumn(ColIndex, corpus.Index().Describe()).
		WithConstColumn(ColStorage, corpus.Storage().Describe()).
		WithConstColumn(ColEmbedder, embedder.Describe()).
		WithConstColumn(ColTime, m.start).
		WithConstColumn(ColRunID, identity)

	return identity, out
}

// Save writes the identified table to <identity>.csv in the results
// directory. Two saves from identical configurations and start time land
// on the same filename and overwrite, which is the dedup contract.
func (m *Manager) Save(table *ResultTable, optimizer Optimizer, corpus *Corpus, model Provider, adaptor Adaptor, embedder Embedder) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("%w: no results directory configured", ErrInvalidState)
	}

	identity, augmented := m.WithIdentifierCols(table, optimizer, corpus, model, adaptor, embedder)

	path := filepath.Join(m.dir, identity+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	if err := augmented.WriteCSV(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close result file: %w", err)
	}

	if m.history != nil {
		if _, err := m.history.CommitRun(context.Background(), identity); err != nil {
			return "", fmt.Errorf("record run: %w", err)
		}
	}

	return identity, nil
}

// LoadResults concatenates every result file under path into one table.
// path must be an existing directory holding at least one result file.
func LoadResults(path string) (*ResultTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidArgument, path)
	}

	files, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	sort.Strings(files)

	var combined *ResultTable
	for _, file := range files {
		table, err := ReadCSVTable(file)
		if err != nil {
			return nil, err
		}
		if combined == nil {
			combined = table
			continue
		}
		if err := combined.Concat(table); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	if combined == nil {
		return nil, fmt.Errorf("%w: no result files in %s", ErrInvalidArgument, path)
	}
	return combined, nil
}

// Identity reduces the run configuration to its content fingerprint: the
// md5 of the descriptor tuple joined in a fixed order. Equal tuples give
// equal identities; any changed field changes the identity.
func Identity(optimizer Optimizer, corpus *Corpus, model Provider, adaptor Adaptor, embedder Embedder, start string) string {
	parts := []string{
		optimizer.Describe(),
		embedder.Describe(),
		corpus.Index().Describe(),
		corpus.Storage().Describe(),
		model.Describe(),
		adaptor.Describe(),
		start,
	}

	sum := md5.Sum([]byte(strings.Join(parts, identitySep)))
	return fmt.Sprintf("%x", sum)
}
