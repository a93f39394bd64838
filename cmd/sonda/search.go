package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <corpus.jsonl> <query>",
		Short: "Search a corpus",
		Long:  `Embed the query and print the nearest corpus records.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("number", "n", 5, "Maximum results")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("number")
	asJSON, _ := cmd.Flags().GetBool("json")

	ws := workspaceFromFlags(cmd)
	cfg, err := internal.LoadConfig(ws)
	if err != nil {
		return err
	}

	matches, err := internal.NewSearchService(cfg).Search(cmd.Context(), args[0], args[1], limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		out := make([]map[string]any, 0, len(matches))
		for _, m := range matches {
			out = append(out, map[string]any{
				"row":    m.Row,
				"score":  m.Score,
				"record": m.Record,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%.4f  #%d  %s\n", m.Score, m.Row, m.Record[cfg.Adaptor.PromptField])
	}
	return nil
}
