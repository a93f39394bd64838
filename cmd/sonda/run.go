package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <corpus.jsonl>",
		Short: "Run an evaluation over a corpus",
		Long:  `Index the corpus, drive the configured optimizer to exhaustion (or a step budget), and save the scored results under the run's identity.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().Int("steps", 0, "Step budget (0 = run until the optimizer exhausts)")
	cmd.Flags().String("provider", "", "Model provider to evaluate with")
	cmd.Flags().Bool("dry-run", false, "Run without saving results")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	provider, _ := cmd.Flags().GetString("provider")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	asJSON, _ := cmd.Flags().GetBool("json")

	ws := workspaceFromFlags(cmd)
	cfg, err := internal.LoadConfig(ws)
	if err != nil {
		return err
	}

	svc := internal.NewEvalService(ws, cfg)

	progress := func(step int) {
		if !asJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "step %d\n", step)
		}
	}

	report, err := svc.Run(cmd.Context(), internal.RunParams{
		CorpusPath: args[0],
		Provider:   provider,
		Steps:      steps,
		Save:       !dryRun,
		Progress:   progress,
	})
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run_id":    report.Identity,
			"evaluated": report.Evaluated,
			"saved":     !dryRun,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d rows evaluated\n", report.Identity, report.Evaluated)
	return nil
}
