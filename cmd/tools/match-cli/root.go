package main

import (
	"matching-workers/internal/common/logger"
	"matching-workers/internal/matching"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

type rootOptions struct {
	tablesPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "match-cli",
		Short:         "Rank artisans against a job request offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.tablesPath, "tables", "", "reference tables YAML (defaults to the built-in tables)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(newScoreCmd(opts), newTablesCmd(opts), newRegistryCmd())
	return root
}

func (o *rootOptions) loadTables() (matching.Tables, error) {
	if o.tablesPath == "" {
		return matching.DefaultTables(), nil
	}
	return matching.LoadTables(o.tablesPath)
}

func (o *rootOptions) logger() logger.Logger {
	if o.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}
