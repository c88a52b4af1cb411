package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/docsy/config"
	"github.com/dhamidi/docsy/parser"
)

const version = "0.1.0"

// app holds the state shared by all commands after flags are parsed.
type app struct {
	configPath string
	verbosity  int
	logFile    string

	config *config.Config
}

func (a *app) parserOptions() []parser.Option {
	return []parser.Option{parser.WithMaxDepth(a.config.Parser.MaxDepth)}
}

func (a *app) load(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.config, err = config.Load(a.configPath)
	} else {
		a.config, err = config.Discover(".")
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	verbosity := a.config.Log.Verbosity
	if cmd.Flags().Changed("verbose") {
		verbosity = a.verbosity
	}
	logFile := a.config.Log.File
	if a.logFile != "" {
		logFile = a.logFile
	}
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}
	if a.config.Path != "" {
		commonlog.GetLogger("docsy").Debugf("using config %s", a.config.Path)
	}
	return nil
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "docsy",
		Short:   "Parse, format and resolve Docsy templates",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: nearest docsy.toml or docsy.yaml)")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newFmtCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newResolveCmd(a))
	rootCmd.AddCommand(newReplCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newUICmd(a))
	rootCmd.AddCommand(newGrammarCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
