package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <ref>",
		Short: "Diff run history",
		Long:  `Show how saved results changed between a history ref and the latest run.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runDiff,
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	ws := workspaceFromFlags(cmd)

	history, err := internal.OpenRunHistory(ws.ResultsDir())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	out, err := history.Diff(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get diff: %w", err)
	}

	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
