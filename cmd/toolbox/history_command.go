package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"toolbox/internal/api"
	"toolbox/internal/daemonctl"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			cfg := ctx.configValue()
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled (history.enabled = false)")
				return nil
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			items, err := client.Conversions(cmd.Context(), limit)
			if err != nil {
				if !daemonctl.IsAPIUnavailable(err) {
					return err
				}
				items, err = daemonctl.LocalConversions(cmd.Context(), cfg, limit)
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd, api.ConversionListResponse{Items: items})
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			fmt.Fprint(out, renderTable(
				[]string{"When", "Request", "Target", "Status", "In", "Out", "Skipped", "Size", "Took", "Error"},
				historyRows(items),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func historyRows(items []api.ConversionRecord) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		requestID := item.RequestID
		if len(requestID) > 8 {
			requestID = requestID[:8]
		}
		size := ""
		if item.ArtifactBytes > 0 {
			size = formatBytes(item.ArtifactBytes)
		}
		errText := item.ErrorKind
		if item.ErrorMessage != "" {
			errText = item.ErrorKind + ": " + item.ErrorMessage
		}
		rows = append(rows, []string{
			formatTimestamp(item.CreatedAt),
			requestID,
			item.TargetFormat,
			item.Status,
			strconv.Itoa(item.InputCount),
			strconv.Itoa(item.OutputCount),
			strconv.Itoa(item.SkippedCount),
			size,
			formatDurationMS(item.DurationMS),
			errText,
		})
	}
	return rows
}
