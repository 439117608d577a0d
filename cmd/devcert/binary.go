package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBinaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "binary",
		Short: "Download mkcert if needed and print its path",
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

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
