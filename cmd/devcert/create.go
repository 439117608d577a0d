package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/devcert/internal/certgen"
)

func newCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Install the local CA and write a localhost certificate",
		Long: `Create provisions mkcert, installs its root CA into the system trust stores
(this may prompt for your password) and writes localhost-key.pem and
localhost.pem into the certificate directory. The directory is appended to
.gitignore when one exists.

On failure devcert logs a warning and exits successfully so that dev servers
can fall back to plain HTTP. Pass --strict to fail instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.create(cmd)
			if err != nil {
				if a.v.GetBool("strict") {
					return err
				}
				a.logger.Warn("could not create certificates, falling back to insecure mode", "error", err)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:  %s\n", result.KeyPath)
			fmt.Fprintf(out, "cert: %s\n", result.CertPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("cert-dir", "", "certificate directory (default: certificates)")
	flags.StringSlice("host", nil, "extra certificate host names, after localhost (repeatable)")
	flags.Bool("strict", false, "exit with an error instead of falling back to insecure mode")
	_ = a.v.BindPFlags(flags)

	return cmd
}

func (a *app) create(cmd *cobra.Command) (*certgen.Result, error) {
	ctx := cmd.Context()

	settings, err := a.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := a.binaryProvider(ctx, settings)
	if err != nil {
		return nil, err
	}

	gen, err := certgen.NewGenerator(certgen.Options{
		Binary:  provider,
		CertDir: settings.CertDir,
		Hosts:   settings.Hosts,
		NewTool: newTool,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, err
	}

	return gen.Create(ctx)
}
