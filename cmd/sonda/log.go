package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show run history",
		Long:  `Show the commit history of saved evaluation runs, newest first.`,
		Args:  cobra.NoArgs,
		RunE:  runLog,
	}

	cmd.Flags().IntP("number", "n", 10, "Maximum commits")
	return cmd
}

func runLog(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("number")
	asJSON, _ := cmd.Flags().GetBool("json")
	ws := workspaceFromFlags(cmd)

	history, err := internal.OpenRunHistory(ws.ResultsDir())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	commits, err := history.Log(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("get log: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	}

	for _, c := range commits {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			c.Hash[:8], c.Timestamp.Format("2006-01-02 15:04:05"), c.Message)
	}
	return nil
}
