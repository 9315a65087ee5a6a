package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/logging"
	"toolbox/internal/tempfs"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove orphaned temp files older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			manager := tempfs.NewManager(cfg.Paths.TempDir, cfg.Sweeper.Prefix, logging.NewNop())

			if list {
				entries, err := tempfs.ListEntries(manager.Dir(), manager.Prefix())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No temp entries")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				var total int64
				for _, entry := range entries {
					total += entry.Size
					rows = append(rows, []string{entry.Name, entry.ModTime.Local().Format("2006-01-02 15:04:05"), formatBytes(entry.Size)})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Entry", "Modified", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
					fmt.Sprintf("%d entries", len(entries)), "", formatBytes(total),
				))
				return nil
			}

			sweeper := tempfs.NewSweeper(manager, cfg.SweepRetention(), 0, logging.NewNop())
			result := sweeper.Sweep(cmd.Context())
			for _, path := range result.Removed {
				fmt.Fprintf(out, "removed %s\n", path)
			}
			for _, failure := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", failure.Path, failure.Error)
			}
			fmt.Fprintf(out, "Sweep complete: %d removed, %d errors\n", len(result.Removed), len(result.Errors))
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d temp entries could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List temp entries instead of sweeping")
	return cmd
}
