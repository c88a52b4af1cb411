package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/repl"
)

const historyFile = ".docsy_history"

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive prompt for Docsy expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var history string
			if home, err := os.UserHomeDir(); err == nil {
				history = filepath.Join(home, historyFile)
			}
			r := repl.New(cmd.OutOrStdout(), repl.Options{
				Globals:     a.config.Resolve.Globals,
				Parser:      a.parserOptions(),
				HistoryFile: history,
			})
			return r.Run()
		},
	}
}
