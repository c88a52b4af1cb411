package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	var resolveDocs bool

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := lsp.Options{Version: version, Parser: a.parserOptions()}
			if resolveDocs {
				opts.Globals = a.config.Resolve.Globals
			}
			server := lsp.NewServer(opts)
			return server.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&resolveDocs, "resolve", false, "report resolve errors against the configured globals as warnings")

	return cmd
}
