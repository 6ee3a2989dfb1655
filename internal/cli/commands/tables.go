package commands

import (
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List user tables in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			tables, err := cmdCtx.Store.Tables(cmd.Context())
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(tables)
			}

			if len(tables) == 0 {
				r.Println("No tables found")
				return nil
			}
			for _, name := range tables {
				r.Println(name)
			}
			r.Muted(r.Count(len(tables), "table"))
			return nil
		},
	}
}
