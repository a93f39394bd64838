package internal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Record is one corpus row: named string fields (question, answer, ...).
type Record map[string]string

// Storage is a read-only table of corpus records. Row order is fixed; row
// indices are the identifiers that flow through index results, optimizer
// steps and persisted score tables.
type Storage interface {
	Len() int
	Row(i int) (Record, error)
	Col(name string) ([]string, error)

	// Describe returns the stable descriptor used in run identities.
	Describe() string
}

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage holds corpus records in memory.
type MemoryStorage struct {
	name    string
	records []Record
}

func NewMemoryStorage(name string, records []Record) (*MemoryStorage, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty storage", ErrInvalidArgument)
	}
	return &MemoryStorage{name: name, records: records}, nil
}

func (s *MemoryStorage) Len() int { return len(s.records) }

func (s *MemoryStorage) Row(i int) (Record, error) {
	if i < 0 || i >= len(s.records) {
		return nil, fmt.Errorf("%w: row %d out of range [0, %d)", ErrInvalidArgument, i, len(s.records))
	}
	return s.records[i], nil
}

func (s *MemoryStorage) Col(name string) ([]string, error) {
	out := make([]string, len(s.records))
	found := false
	for i, rec := range s.records {
		if v, ok := rec[name]; ok {
			out[i] = v
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: column %q", ErrNotFound, name)
	}
	return out, nil
}

func (s *MemoryStorage) Describe() string {
	return fmt.Sprintf("memory(%s n=%d)", s.name, len(s.records))
}

// Columns returns the sorted union of field names across all records.
func (s *MemoryStorage) Columns() []string {
	seen := map[string]bool{}
	for _, rec := range s.records {
		for k := range rec {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// LoadJSONLStorage reads a corpus from a JSONL file, one flat JSON object
// per line. Blank lines are skipped; non-string values are rejected.
func LoadJSONLStorage(path string) (*MemoryStorage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open corpus %s: %v", ErrInvalidArgument, path, err)
	}
	defer f.Close()

	var records []Record

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: corpus %s line %d: %v", ErrInvalidArgument, path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	return NewMemoryStorage(filepath.Base(path), records)
}
