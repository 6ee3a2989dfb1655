package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped backup of the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if dir == "" {
				dir = cmdCtx.Cfg.BackupsDir
			}

			var path string
			var size int64
			err = logged(cmd.Context(), cmdCtx.Store, "backup", "", dir, func() error {
				var err error
				path, size, err = cmdCtx.Store.Backup(cmd.Context(), dir)
				return err
			})
			if err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("Backup written to %s (%s)", path, humanBytes(size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Backup directory (default: backups_dir from config)")

	return cmd
}
