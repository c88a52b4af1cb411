package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsy/grammar"
)

var grammarLog = commonlog.GetLogger("docsy.grammar")

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarPrintCmd())
	cmd.AddCommand(newGrammarLexCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long: `Parse and verify an EBNF grammar file. Without a file, the built-in
Docsy grammar is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "docsy.ebnf"
			var src *strings.Reader
			if len(args) == 1 {
				filename = args[0]
				data, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				src = strings.NewReader(string(data))
			} else {
				src = strings.NewReader(grammar.Source())
				if !cmd.Flags().Changed("start") {
					startProduction = grammar.Start
				}
			}

			g, err := grammar.Check(filename, src, startProduction)
			if err != nil {
				errs := grammar.Errors(err)
				for _, e := range errs {
					fmt.Println(e)
				}
				return fmt.Errorf("%s: %d errors", filename, len(errs))
			}
			fmt.Printf("%s: %d productions\n", filename, len(g))
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newGrammarPrintCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the Docsy grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list {
				fmt.Print(grammar.Source())
				return nil
			}
			g, err := grammar.Load()
			if err != nil {
				return err
			}
			for _, name := range grammar.Productions(g) {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list production names only")

	return cmd
}

func newGrammarLexCmd() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "lex [file]",
		Short: "Split a file into tokens using the grammar's lexical productions",
		Long: `Split a file into tokens using the lexical productions of the built-in
grammar. At every offset the longest match among the token kinds wins; ties
go to the kind listed first. Characters no kind matches are reported as
"other".

Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}
			g, err := grammar.Load()
			if err != nil {
				return err
			}
			for _, kind := range kinds {
				if _, ok := g[kind]; !ok {
					return fmt.Errorf("unknown production: %s", kind)
				}
			}

			grammarLog.Debugf("lexing %s with %d productions", filename, len(g))
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Kind", "Range", "Text"})
			table.SetAutoFormatHeaders(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			for _, tok := range grammar.NewLexer(g, source, kinds...).Tokenize() {
				table.Append([]string{
					tok.Kind,
					fmt.Sprintf("%d..%d", tok.Start, tok.End),
					strconv.Quote(tok.Text),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "kinds", "k", nil, "token productions in priority order (default "+strings.Join(grammar.TokenKinds, ",")+")")

	return cmd
}
