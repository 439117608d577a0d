package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCARootCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "caroot",
		Short: "Print the directory holding the mkcert root CA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := a.loadSettings(ctx)
			if err != nil {
				return err
			}
			provider, err := a.binaryProvider(ctx, settings)
			if err != nil {
				return err
			}
			path, err := provider.EnsureBinary(ctx)
			if err != nil {
				return fmt.Errorf("provision mkcert: %w", err)
			}

			caroot, err := newTool(path).CARoot(ctx)
			if err != nil {
				return fmt.Errorf("query CA root: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), caroot)
			return nil
		},
	}
}
