package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/ui"
)

func newUICmd(a *app) *cobra.Command {
	var addr string
	var example string
	var assets string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ui.Options{
				Parser:  a.parserOptions(),
				Globals: a.config.Resolve.Globals,
				Assets:  assets,
			}
			if example != "" {
				data, err := os.ReadFile(example)
				if err != nil {
					return fmt.Errorf("read example: %w", err)
				}
				opts.Example = string(data)
			}
			server, err := ui.NewServer(opts)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Printf("Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().StringVar(&example, "example", "", "file to show when the page opens")
	cmd.Flags().StringVar(&assets, "assets", "", "directory with static/ and templates/ overriding the built-in files")

	return cmd
}
