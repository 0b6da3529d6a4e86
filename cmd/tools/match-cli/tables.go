package main

import (
	"github.com/spf13/cobra"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the active reference tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := root.loadTables()
			if err != nil {
				return err
			}
			data, err := tables.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
