package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCmd(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")
	corpus := writeTestCorpus(t)

	if _, err := execute(t, "init", "--workspace", wsDir); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := execute(t, "run", corpus, "--workspace", wsDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "3 rows evaluated") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// The saved run shows up in the results listing.
	list, err := execute(t, "results", "list", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("results list: %v", err)
	}
	if strings.TrimSpace(list) == "" {
		t.Error("results list is empty after a saved run")
	}
}

func TestRunCmdDryRunJSON(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")
	corpus := writeTestCorpus(t)

	out, err := execute(t, "run", corpus, "--dry-run", "--json", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if report["run_id"] == "" {
		t.Error("empty run_id")
	}
	if report["saved"] != false {
		t.Errorf("saved = %v, want false", report["saved"])
	}
	if report["evaluated"] != float64(3) {
		t.Errorf("evaluated = %v, want 3", report["evaluated"])
	}

	list, err := execute(t, "results", "list", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("results list: %v", err)
	}
	if strings.TrimSpace(list) != "" {
		t.Errorf("dry run saved results:\n%s", list)
	}
}

func TestRunCmdMissingCorpus(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")

	if _, err := execute(t, "run", "no-such-file.jsonl", "--workspace", wsDir); err == nil {
		t.Error("expected error for missing corpus")
	}
}
