package commands

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/store"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the database",
		Long: `Run SQL statements against the database.

SELECT statements render their result set; other statements report the
number of rows affected. When invoked without arguments on a terminal,
enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  admin query "SELECT * FROM users"

  # Output as JSON
  admin query "SELECT * FROM users" --format json

  # Interactive mode
  admin query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return err
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, cmdCtx, opts)
	}

	return executeSQL(cmd.Context(), cmdCtx.Renderer, cmdCtx.Store, sqlQuery, opts.Format)
}

// executeSQL runs one statement. SELECT-like statements render rows; other
// statements report rows affected.
func executeSQL(ctx context.Context, r *output.Renderer, st *store.Store, sqlQuery, format string) error {
	query := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";"))
	if query == "" {
		return nil
	}

	head := strings.ToUpper(firstWord(query))
	if head == "SELECT" || head == "WITH" || head == "PRAGMA" || head == "EXPLAIN" {
		rows, err := st.DB().QueryContext(ctx, query)
		if err != nil {
			return err
		}
		rs, err := store.CollectRows(rows)
		if err != nil {
			return err
		}
		return renderResultSet(r, rs, format)
	}

	res, err := st.DB().ExecContext(ctx, query)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	r.Printf("Rows affected: %d\n", affected)
	return nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
