package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for new evaluation results",
		Long:  `Follow the results directory and report runs as they are saved, e.g. by concurrent managers writing to the same workspace.`,
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	ws := workspaceFromFlags(cmd)

	if _, err := os.Stat(ws.ResultsDir()); os.IsNotExist(err) {
		return fmt.Errorf("not initialized: %s", ws.ResultsDir())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(ws.ResultsDir()); err != nil {
		return fmt.Errorf("watch results dir: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for results...\n", ws.ResultsDir())

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	pending := map[string]bool{}

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(event) {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(debounce)
			}
			pending[event.Name] = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)

		case <-timer.C:
			for path := range pending {
				id := strings.TrimSuffix(filepath.Base(path), ".csv")
				fmt.Fprintf(cmd.OutOrStdout(), "run saved: %s\n", id)
			}
			pending = map[string]bool{}
		}
	}
}

// shouldIgnoreEvent drops everything but writes to result files; the
// .history repository produces a stream of its own events.
func shouldIgnoreEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return true
	}
	if strings.Contains(event.Name, ".history") {
		return true
	}
	return !strings.HasSuffix(event.Name, ".csv")
}
