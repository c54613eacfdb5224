package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/timers/internal/export"
)

func exportCmd(e *env) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all timers to a CSV or JSON file",
		Args:  cobra.NoArgs,
		RunE: e.withState(func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			now := e.state.Clock().Now()
			path := out
			if path == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				path = export.Filename(wd, f, now)
			}
			if err := export.Write(f, e.state.Timers(), now, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d timers to %s\n", len(e.state.Timers()), path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default timers-export-<date>.<format> in the working directory)")
	return cmd
}
