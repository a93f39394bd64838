package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect saved evaluation results",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(newResultsListCmd(), newResultsShowCmd())
	return cmd
}

func newResultsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE:  runResultsList,
	}
}

func runResultsList(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	ws := workspaceFromFlags(cmd)

	files, err := filepath.Glob(filepath.Join(ws.ResultsDir(), "*.csv"))
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(file), ".csv"))
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ids)
	}

	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func newResultsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print saved scores",
		Long:  `Print one run's score table, or the combined table of every saved run when no id is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runResultsShow,
	}
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	ws := workspaceFromFlags(cmd)

	var table *internal.ResultTable
	var err error
	if len(args) == 1 {
		table, err = internal.ReadCSVTable(filepath.Join(ws.ResultsDir(), args[0]+".csv"))
	} else {
		table, err = internal.LoadResults(ws.ResultsDir())
	}
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	return table.WriteCSV(cmd.OutOrStdout())
}
