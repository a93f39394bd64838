package main

import (
	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sonda",
		Short:         "Corpus probing and evaluation for language models",
		Long:          `Builds vector indexes over corpus embeddings, drives step-based optimizers across them, and records deduplicated evaluation runs.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		NewInitCmd(),
		NewRunCmd(),
		NewSearchCmd(),
		NewResultsCmd(),
		NewLogCmd(),
		NewDiffCmd(),
		NewWatchCmd(),
		NewProviderCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("workspace", "", "Workspace directory (defaults to the nearest .sonda)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

// workspaceFromFlags resolves the active workspace for a command.
func workspaceFromFlags(cmd *cobra.Command) internal.Workspace {
	explicit, _ := cmd.Flags().GetString("workspace")
	return internal.NewWorkspaceResolver().Resolve(explicit)
}
