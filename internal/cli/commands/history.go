package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
)

// NewHistoryCommand creates the history command, which lists recent entries
// of the admin operation log.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent admin operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ops, err := cmdCtx.Store.RecentOperations(cmd.Context(), limit)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(ops)
			}

			if len(ops) == 0 {
				r.Println("No operations recorded")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(r.Writer())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Time", "Operation", "Table", "Status", "Detail"})
			for _, op := range ops {
				tw.AppendRow(table.Row{
					op.StartedAt.Format("2006-01-02 15:04:05"),
					op.Name,
					op.TargetTable,
					op.Status,
					op.Detail,
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")

	return cmd
}
