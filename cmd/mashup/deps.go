package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mashup/internal/deps"
	"mashup/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries mashup needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderDeps(statuses))
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependencies missing", len(missing))
			}
			return nil
		},
	}
}

func renderDeps(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Version
		if !status.Available {
			detail = status.Detail
		}
		rows = append(rows, []string{
			status.Name,
			status.Command,
			yesNo(status.Available),
			yesNo(!status.Optional),
			detail,
		})
	}
	return renderTable(cols("Name", "Command", "Available", "Required", "Detail"), rows)
}
