package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Export a table to a timestamped CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		Example: `  admin export users
  admin export workouts --format json --dir /tmp/exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			table := args[0]
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cmdCtx.Cfg.ExportsDir
			}

			rs, err := cmdCtx.Store.Rows(cmd.Context(), table)
			if err != nil {
				return err
			}

			var path string
			err = logged(cmd.Context(), cmdCtx.Store, "export", table, string(f), func() error {
				var err error
				path, err = export.Export(dir, table, rs, f)
				return err
			})
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			r.Success(fmt.Sprintf("Exported %s to %s", r.Count(rs.Len(), "row"), path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv or json")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default: exports_dir from config)")

	return cmd
}
