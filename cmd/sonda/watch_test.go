package main

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "result file write",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/abc123.csv", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "result file create",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/abc123.csv", Op: fsnotify.Create},
			want:  false,
		},
		{
			name:  "history repository noise",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/.history/objects/ab", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "marker file",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/.sonda-results", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "chmod ignored",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/abc123.csv", Op: fsnotify.Chmod},
			want:  true,
		},
		{
			name:  "remove ignored",
			event: fsnotify.Event{Name: "/ws/.sonda/runs/abc123.csv", Op: fsnotify.Remove},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldIgnoreEvent(tt.event); got != tt.want {
				t.Errorf("shouldIgnoreEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestWatchCmdUninitialized(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), ".sonda")

	if _, err := execute(t, "watch", "--workspace", wsDir); err == nil {
		t.Error("expected error without an initialized workspace")
	}
}
