package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"toolbox/internal/daemonctl"
	"toolbox/internal/daemonrun"
	"toolbox/internal/format"
	"toolbox/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var target string
	var output string
	var remote bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "convert --to <format> <file>...",
		Short: "Convert files and write the resulting PDF or archive",
		Long: "Convert one or more files to a target format.\n\n" +
			"Targets: " + strings.Join(format.Supported(), ", ") + ".\n" +
			"A pdf target merges every input into one document; other targets\n" +
			"produce a ZIP archive. Inputs with no rule for the target are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := format.ParseTarget(target); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			files, err := readUploads(args)
			if err != nil {
				return err
			}

			var (
				data    []byte
				name    string
				summary string
			)
			if remote {
				client, err := ctx.apiClient()
				if err != nil {
					return err
				}
				download, err := client.Convert(cmd.Context(), target, files)
				if err != nil {
					if daemonctl.IsAPIUnavailable(err) {
						return fmt.Errorf("daemon not reachable at %s; start it with `toolbox serve`", ctx.apiAddress())
					}
					return err
				}
				data, name = download.Data, download.Name
				summary = "request " + download.RequestID
			} else {
				level := cfg.Logging.Level
				if verbose {
					level = "debug"
				}
				logger, err := logging.New(logging.Options{
					Level:       level,
					Format:      cfg.Logging.Format,
					OutputPaths: []string{"stderr"},
				})
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				stack, err := daemonrun.NewStack(cfg, logger)
				if err != nil {
					return err
				}
				defer stack.Close()
				artifact, err := stack.Convert.Convert(cmd.Context(), files, target)
				if err != nil {
					return err
				}
				data, name = artifact.Data, artifact.Name
				summary = fmt.Sprintf("%d entries", artifact.Entries)
			}
			if name == "" {
				return errors.New("daemon response did not name the artifact")
			}

			path, err := resolveOutputPath(output, name)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s)\n", path, formatBytes(int64(len(data))), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "to", "t", "", "Target format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (defaults to the artifact name in the current directory)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Send the files to the running daemon instead of converting locally")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each converted file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
