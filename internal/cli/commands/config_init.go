package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nextgenfitness/backend/internal/config"
)

// NewConfigCommand creates the config command and its init subcommand.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter nextgen.yaml in the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			const path = "nextgen.yaml"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			data, err := yaml.Marshal(map[string]any{
				"database":     config.DefaultDatabase,
				"addr":         config.DefaultAddr,
				"exports_dir":  config.DefaultExportsDir,
				"backups_dir":  config.DefaultBackupsDir,
				"cors_origins": []string{"*"},
				"bcrypt_cost":  config.DefaultBcryptCost,
				"output":       config.DefaultOutput,
			})
			if err != nil {
				return err
			}

			header := []byte("# NextGenFitness configuration.\n" +
				"# Values may be overridden with NEXTGEN_-prefixed environment\n" +
				"# variables or command-line flags.\n")
			if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			cmdCtx.Renderer.Success("Wrote " + path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
