package main

import (
	"fmt"

	"matching-workers/internal/common/validation"
	"matching-workers/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Validate the activity registry and list its task types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			// Compiling every schema catches broken $refs the JSON decode misses.
			if _, err := validation.NewValidator(reg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Activity registry v%s", reg.Version)))
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render(a.TaskType), mutedStyle.Render(a.ID))
				fmt.Fprintf(out, "  %s (%s), timeout %s, %d retries\n", a.DisplayName, a.ImplementationStatus, a.TimeoutDuration(), a.Retries)
			}
			fmt.Fprintf(out, "\n%d activities valid\n", len(reg.Activities))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "registry JSON file (defaults to the built-in registry)")
	return cmd
}

func loadRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}
