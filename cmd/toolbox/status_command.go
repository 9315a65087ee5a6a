package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"toolbox/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and sweeper status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			snap, err := daemonctl.BuildStatusSnapshot(cmd.Context(), client, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snap.Status)
			}
			renderStatus(cmd.OutOrStdout(), ctx.apiAddress(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

func renderStatus(out io.Writer, address string, snap daemonctl.Snapshot) {
	colorize := shouldColorize(out)
	status := snap.Status

	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(out, line)
	}
	switch {
	case snap.Reachable && status.Running:
		fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
	case snap.LockHeld:
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "Lock held but API unreachable at "+address, colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "Not running", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("API", statusInfo, address, colorize))
	fmt.Fprintln(out, renderStatusLine("Targets", statusInfo, strings.Join(status.Targets, ", "), colorize))
	if status.HistoryDBPath != "" {
		detail := fmt.Sprintf("%d succeeded, %d failed", status.Conversions.Succeeded, status.Conversions.Failed)
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, detail, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, "Disabled", colorize))
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range dependencyLines(status.Dependencies, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Directories", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range preflightLines(status.Preflight, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Temp Sweeper", colorize) {
		fmt.Fprintln(out, line)
	}
	sweeper := status.Sweeper
	if !sweeper.Enabled {
		fmt.Fprintln(out, renderStatusLine("Sweeper", statusWarn, "Disabled", colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Sweeper", statusOK, fmt.Sprintf("%s/%s*", sweeper.Dir, sweeper.Prefix), colorize))
	if sweeper.LastRun != "" {
		kind := statusOK
		if sweeper.LastErrors > 0 {
			kind = statusWarn
		}
		detail := fmt.Sprintf("%s, %d passes, %d removed, %d errors last pass",
			formatTimestamp(sweeper.LastRun), sweeper.Passes, sweeper.TotalRemoved, sweeper.LastErrors)
		fmt.Fprintln(out, renderStatusLine("Last sweep", kind, detail, colorize))
	}
}
