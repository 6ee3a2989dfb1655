package commands

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/store"
)

// renderResultSet writes rs in the given format: table (default), json, or
// csv.
func renderResultSet(r *output.Renderer, rs *store.ResultSet, format string) error {
	switch format {
	case "json":
		return r.JSON(rs.Maps())
	case "csv":
		return renderCSV(r.Writer(), rs)
	default:
		renderTable(r, rs)
		return nil
	}
}

func renderTable(r *output.Renderer, rs *store.ResultSet) {
	if rs.Len() == 0 {
		r.Println("(0 rows)")
		return
	}

	rows := make([][]any, len(rs.Rows))
	for i, row := range rs.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		rows[i] = cells
	}
	r.Table(rs.Columns, rows)
}

func renderCSV(w io.Writer, rs *store.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
			} else {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// renderDescriptor prints a table descriptor as a column table.
func renderDescriptor(r *output.Renderer, t *store.Table) {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "Key"})

	for _, c := range t.Columns {
		nullable := "YES"
		if c.NotNull {
			nullable = "NO"
		}
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		tw.AppendRow(table.Row{c.Name, c.Type, nullable, c.Default, key})
	}
	tw.Render()
}
