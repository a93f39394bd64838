package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		Long:  `Create the .sonda workspace with a default config and an empty results history.`,
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	ws := workspaceFromFlags(cmd)

	if err := internal.InitWorkspace(ws); err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}
	if _, err := internal.EnsureRunHistory(ws.ResultsDir()); err != nil {
		return fmt.Errorf("init run history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace at %s\n", ws.Dir)
	return nil
}
