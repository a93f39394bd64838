package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetrovp/sonda/internal"
)

func NewProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage model providers",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(
		newProviderListCmd(),
		newProviderAddCmd(),
		newProviderRemoveCmd(),
		newProviderDefaultCmd(),
		newProviderTestCmd(),
	)
	return cmd
}

func providerService(cmd *cobra.Command) *internal.ProviderService {
	return internal.NewProviderService(workspaceFromFlags(cmd))
}

func newProviderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := providerService(cmd).List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newProviderAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, _ := cmd.Flags().GetString("api-key")
			baseURL, _ := cmd.Flags().GetString("base-url")
			model, _ := cmd.Flags().GetString("model")

			return providerService(cmd).Add(args[0], internal.ProviderConfig{
				APIKey:  apiKey,
				BaseURL: baseURL,
				Model:   model,
			})
		},
	}

	cmd.Flags().String("api-key", "", "API key")
	cmd.Flags().String("base-url", "", "Base URL override")
	cmd.Flags().String("model", "", "Model name")
	return cmd
}

func newProviderRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return providerService(cmd).Remove(args[0])
		},
	}
}

func newProviderDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Set the default provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return providerService(cmd).SetDefault(args[0])
		},
	}
}

func newProviderTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Test a provider with a trivial prompt",
		Long:  `Stream a trivial prompt through the provider and print the reply as it arrives.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := providerService(cmd).Test(cmd.Context(), args[0], cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("provider test: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nok")
			return nil
		},
	}
}
