package internal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResultTableAppendAndCell(t *testing.T) {
	table := NewResultTable(ColRow, ColScore)
	if err := table.AppendRow("0", "1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := table.AppendRow("1", "0.5"); err != nil {
		t.Fatalf("append: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("len = %d, want 2", table.Len())
	}
	got, err := table.Cell(1, ColScore)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if got != "0.5" {
		t.Errorf("cell = %q, want 0.5", got)
	}

	if err := table.AppendRow("too", "many", "values"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("arity mismatch: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := table.Cell(0, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing column: expected ErrNotFound, got %v", err)
	}
	if _, err := table.Cell(9, ColRow); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("row out of range: expected ErrInvalidArgument, got %v", err)
	}
}

func TestResultTableWithConstColumn(t *testing.T) {
	table := NewResultTable(ColRow)
	table.AppendRow("0")
	table.AppendRow("1")

	out := table.WithConstColumn(ColRunID, "abc")

	if len(table.Columns()) != 1 {
		t.Error("receiver was modified")
	}
	if len(out.Columns()) != 2 {
		t.Fatalf("columns = %v", out.Columns())
	}
	for i := 0; i < out.Len(); i++ {
		v, _ := out.Cell(i, ColRunID)
		if v != "abc" {
			t.Errorf("row %d run_id = %q, want abc", i, v)
		}
	}
}

func TestResultTableConcat(t *testing.T) {
	a := NewResultTable(ColRow, ColScore)
	a.AppendRow("0", "1")
	b := NewResultTable(ColRow, ColScore)
	b.AppendRow("1", "0")

	if err := a.Concat(b); err != nil {
		t.Fatalf("concat: %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("len = %d, want 2", a.Len())
	}

	mismatched := NewResultTable(ColRow, "other")
	if err := a.Concat(mismatched); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("column mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestResultTableCSVRoundTrip(t *testing.T) {
	table := NewResultTable(ColRow, ColScore, ColRunID)
	table.AppendRow("0", "0.25", "deadbeef")
	table.AppendRow("1", "1", "deadbeef")

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "row,score,run_id\n") {
		t.Errorf("unexpected header: %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "run.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	back, err := ReadCSVTable(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("len = %d, want 2", back.Len())
	}
	score, _ := back.Cell(0, ColScore)
	if score != "0.25" {
		t.Errorf("score = %q, want 0.25", score)
	}
}

func TestReadCSVTableErrors(t *testing.T) {
	if _, err := ReadCSVTable(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing file: expected ErrInvalidArgument, got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadCSVTable(empty); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty file: expected ErrInvalidArgument, got %v", err)
	}
}
