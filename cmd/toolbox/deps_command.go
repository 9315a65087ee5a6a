package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/api"
	"toolbox/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Report availability of the external conversion tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := api.FromDependencyStatuses(preflight.CheckSystemDeps(ctx.configValue()))
			if asJSON {
				return writeJSON(cmd, deps)
			}
			rows := make([][]string, 0, len(deps))
			for _, dep := range deps {
				where := dep.Path
				if !dep.Available {
					where = dep.Detail
				}
				rows = append(rows, []string{dep.Name, dep.Command, yesNo(dep.Available), where, dep.Description})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Command", "Available", "Path", "Needed For"},
				rows,
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
