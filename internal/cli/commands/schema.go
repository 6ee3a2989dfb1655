package commands

import (
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the column layout of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := cmdCtx.Store.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(t)
			}

			r.Header("Table: " + t.Name)
			renderDescriptor(r, t)
			return nil
		},
	}
}
