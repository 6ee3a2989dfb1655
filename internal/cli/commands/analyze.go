package commands

import (
	"database/sql"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/store"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <table>",
		Short: "Show row count, size, and per-column statistics for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := cmdCtx.Store.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(stats)
			}

			renderStats(r, stats)
			return nil
		},
	}
}

func renderStats(r *output.Renderer, stats *store.TableStats) {
	r.Header("Analysis: " + stats.Table)
	r.Printf("Rows: %s\n", r.Count(int(stats.RowCount), "row"))
	r.Printf("Database size: %s\n", humanBytes(stats.SizeBytes))
	r.Println("")

	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Type", "Nulls", "Distinct", "Min", "Max", "Avg"})

	for _, c := range stats.Columns {
		min, max, avg := "", "", ""
		if c.Numeric {
			min = nullFloat(c.Min)
			max = nullFloat(c.Max)
			avg = nullFloat(c.Avg)
		}
		tw.AppendRow(table.Row{c.Name, c.Type, c.Nulls, c.Distinct, min, max, avg})
	}
	tw.Render()
}

func nullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%g", v.Float64)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
