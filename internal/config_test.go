package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func tempWorkspace(t *testing.T) Workspace {
	t.Helper()
	root := t.TempDir()
	return Workspace{Root: root, Dir: filepath.Join(root, WorkspaceDirName)}
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	ws := tempWorkspace(t)

	cfg, err := LoadConfig(ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Embeddings.Backend != "hash" || cfg.Embeddings.Dimension != 256 {
		t.Errorf("unexpected embeddings defaults: %+v", cfg.Embeddings)
	}
	if cfg.Index.Backend != string(BackendFlat) {
		t.Errorf("index backend = %q, want flat", cfg.Index.Backend)
	}
	if cfg.Optimizer.Name != "sweep" {
		t.Errorf("optimizer = %q, want sweep", cfg.Optimizer.Name)
	}
	if cfg.Providers == nil {
		t.Error("providers map is nil")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	ws := tempWorkspace(t)

	cfg := DefaultConfig()
	cfg.Embeddings.Dimension = 64
	cfg.Optimizer.Name = "random"
	cfg.Optimizer.Seed = 99
	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}
	cfg.DefaultProvider = "openai"

	if err := SaveConfig(ws, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := LoadConfig(ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if back.Embeddings.Dimension != 64 {
		t.Errorf("dimension = %d, want 64", back.Embeddings.Dimension)
	}
	if back.Optimizer.Name != "random" || back.Optimizer.Seed != 99 {
		t.Errorf("unexpected optimizer: %+v", back.Optimizer)
	}
	if back.DefaultProvider != "openai" {
		t.Errorf("default provider = %q", back.DefaultProvider)
	}
	p, ok := back.Providers["openai"]
	if !ok || p.Model != "gpt-4o-mini" {
		t.Errorf("unexpected provider: %+v", back.Providers)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	ws := tempWorkspace(t)
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(ws.ConfigPath(), []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadConfig(ws); err == nil {
		t.Error("expected parse error")
	}
}
