package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Column names shared by every persisted result table.
const (
	ColRow       = "row"
	ColScore     = "score"
	ColOptimizer = "optimizer"
	ColModel     = "model"
	ColAdaptor   = "adaptor"
	ColIndex     = "index"
	ColStorage   = "storage"
	ColEmbedder  = "embedder"
	ColTime      = "time"
	ColRunID     = "run_id"
)

// ResultTable is a small column-ordered string table, the persisted form
// of a run's scores.
type ResultTable struct {
	columns []string
	rows    [][]string
}

func NewResultTable(columns ...string) *ResultTable {
	return &ResultTable{columns: append([]string(nil), columns...)}
}

func (t *ResultTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *ResultTable) Len() int { return len(t.rows) }

// AppendRow adds a row; it must match the column count.
func (t *ResultTable) AppendRow(values ...string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: row has %d values, table has %d columns", ErrInvalidArgument, len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

// Cell returns the value at row i, named column.
func (t *ResultTable) Cell(i int, column string) (string, error) {
	if i < 0 || i >= len(t.rows) {
		return "", fmt.Errorf("%w: row %d out of range", ErrInvalidArgument, i)
	}
	for c, name := range t.columns {
		if name == column {
			return t.rows[i][c], nil
		}
	}
	return "", fmt.Errorf("%w: column %q", ErrNotFound, column)
}

// Copy returns a deep copy.
func (t *ResultTable) Copy() *ResultTable {
	out := NewResultTable(t.columns...)
	for _, row := range t.rows {
		out.rows = append(out.rows, append([]string(nil), row...))
	}
	return out
}

// WithConstColumn returns a copy with an extra column holding the same
// value in every row. The receiver is not modified.
func (t *ResultTable) WithConstColumn(name, value string) *ResultTable {
	out := t.Copy()
	out.columns = append(out.columns, name)
	for i := range out.rows {
		out.rows[i] = append(out.rows[i], value)
	}
	return out
}

// Concat appends another table's rows. Column sets must match exactly.
func (t *ResultTable) Concat(other *ResultTable) error {
	if len(other.columns) != len(t.columns) {
		return fmt.Errorf("%w: column mismatch", ErrInvalidArgument)
	}
	for i, name := range t.columns {
		if other.columns[i] != name {
			return fmt.Errorf("%w: column mismatch at %q", ErrInvalidArgument, name)
		}
	}
	for _, row := range other.rows {
		t.rows = append(t.rows, append([]string(nil), row...))
	}
	return nil
}

// WriteCSV writes the table with a header row.
func (t *ResultTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSVTable reads a table written by WriteCSV.
func ReadCSVTable(path string) (*ResultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidArgument, path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidArgument, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header", ErrInvalidArgument, path)
	}

	table := NewResultTable(records[0]...)
	for _, row := range records[1:] {
		if err := table.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return table, nil
}
