package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var expression bool
	var globals []string
	var indent bool

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve a .docsy file and print the value as JSON",
		Long: `Resolve a .docsy file against the configured globals and print the
resulting value as JSON. Elements are printed as objects with type, props
and key.

Globals from the config file can be overridden with --global name=value,
where value is parsed as JSON and taken as a plain string otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}

			values := make(map[string]any, len(a.config.Resolve.Globals)+len(globals))
			for k, v := range a.config.Resolve.Globals {
				values[k] = v
			}
			for _, g := range globals {
				name, raw, ok := strings.Cut(g, "=")
				if !ok {
					return fmt.Errorf("invalid global %q, expected name=value", g)
				}
				var v any
				if err := json.Unmarshal([]byte(raw), &v); err != nil {
					v = raw
				}
				values[name] = v
			}

			file, err := parseSource(source, filename, expression, a.parserOptions())
			if err != nil {
				return fmt.Errorf("parse: %s", describeError(err))
			}
			value, err := resolve.Resolve(file, resolve.Options{
				Globals:            values,
				ElementConstructor: resolve.BuildElement,
			})
			if err != nil {
				return fmt.Errorf("resolve: %s", describeError(err))
			}

			enc := json.NewEncoder(os.Stdout)
			if indent {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(resolve.JSON(value)); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&expression, "expr", "e", false, "parse the input as a single expression")
	cmd.Flags().StringArrayVarP(&globals, "global", "g", nil, "set a global (name=value)")
	cmd.Flags().BoolVar(&indent, "indent", true, "indent the JSON output")

	return cmd
}
