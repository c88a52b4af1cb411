package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/format"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var expression bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .docsy file and dump the syntax tree",
		Long: `Parse a .docsy file and dump the syntax tree.

Formats:
  json   nested JSON with kinds, spans and scalar fields
  tree   one line per node, indented by depth
  table  one table row per node

Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewASTJSONEncoder(os.Stdout)
			case "tree":
				encoder = format.NewLineEncoder(os.Stdout)
			case "table":
				encoder = format.NewTableEncoder(os.Stdout)
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			file, err := parseSource(source, filename, expression, a.parserOptions())
			if err != nil {
				return fmt.Errorf("parse: %s", describeError(err))
			}

			if err := encoder.Encode(file); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "json" {
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, tree, table)")
	cmd.Flags().BoolVarP(&expression, "expr", "e", false, "parse the input as a single expression")

	return cmd
}
