package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsy/format"
)

func newFmtCmd(a *app) *cobra.Command {
	var overwrite bool
	var quotes bool
	var check bool
	var expression bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Rewrite a .docsy file with normalized string quotes",
		Long: `Rewrite a .docsy file to stdout.

Strings get the quote style that needs the fewest escapes. Everything
else is printed exactly as written. With --quotes=false the file is only
parsed and serialized again, which checks that printing is lossless.

Use -w to overwrite the file in place (requires a file argument) and
--check to exit with an error when the file would change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if overwrite && len(args) == 0 {
				return fmt.Errorf("-w requires a file argument")
			}
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}

			file, err := parseSource(source, filename, expression, a.parserOptions())
			if err != nil {
				return fmt.Errorf("parse: %s", describeError(err))
			}

			var output string
			if quotes {
				output, err = format.FormatQuotes(file)
			} else {
				output, err = format.SerializeFile(file, file.Root)
			}
			if err != nil {
				return fmt.Errorf("format: %s", describeError(err))
			}

			switch {
			case check:
				if output != source {
					return fmt.Errorf("%s is not formatted", filename)
				}
				return nil
			case overwrite:
				if output == source {
					return nil
				}
				return os.WriteFile(filename, []byte(output), 0644)
			}
			_, err = os.Stdout.WriteString(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "write", "w", false, "overwrite the file in place")
	cmd.Flags().BoolVar(&quotes, "quotes", true, "normalize string quotes")
	cmd.Flags().BoolVar(&check, "check", false, "fail if the file is not formatted")
	cmd.Flags().BoolVarP(&expression, "expr", "e", false, "parse the input as a single expression")

	return cmd
}
