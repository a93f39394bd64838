package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestProviderAddListRemove(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")
	if _, err := execute(t, "init", "--workspace", wsDir); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := execute(t, "provider", "add", "openai", "--api-key", "sk-test", "--model", "gpt-4o-mini", "--workspace", wsDir); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := execute(t, "provider", "add", "bogus", "--model", "x", "--workspace", wsDir); err == nil {
		t.Error("expected error for unknown provider name")
	}

	out, err := execute(t, "provider", "list", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "openai") {
		t.Errorf("list output = %q", out)
	}

	if _, err := execute(t, "provider", "default", "openai", "--workspace", wsDir); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := execute(t, "provider", "default", "missing", "--workspace", wsDir); err == nil {
		t.Error("expected error for unknown default provider")
	}

	if _, err := execute(t, "provider", "remove", "openai", "--workspace", wsDir); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err = execute(t, "provider", "list", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "openai") {
		t.Errorf("provider still listed after remove: %q", out)
	}
}

func TestProviderTestStatic(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")
	if _, err := execute(t, "init", "--workspace", wsDir); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := execute(t, "provider", "test", "static", "--workspace", wsDir)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("output = %q", out)
	}
}
