package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/format"
)

func newTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "targets",
		Short:       "List supported target formats and their output",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(format.Supported()))
			for _, name := range format.Supported() {
				target, err := format.ParseTarget(name)
				if err != nil {
					return err
				}
				output := "ZIP archive"
				if target.Family == format.FamilyPDF {
					output = "single PDF"
				}
				rows = append(rows, []string{target.Format, target.Family.String(), output})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Target", "Family", "Output"}, rows, nil))
			return nil
		},
	}
}
