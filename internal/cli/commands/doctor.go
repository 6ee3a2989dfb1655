package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/config"
	"github.com/nextgenfitness/backend/internal/store"
)

// DoctorOutput is the health report produced by the doctor command.
type DoctorOutput struct {
	ConfigFile       string `json:"config_file" yaml:"config_file"`
	Database         string `json:"database" yaml:"database"`
	Reachable        bool   `json:"reachable" yaml:"reachable"`
	MigrationVersion int64  `json:"migration_version" yaml:"migration_version"`
	TableCount       int    `json:"table_count" yaml:"table_count"`
	UserCount        int64  `json:"user_count" yaml:"user_count"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and database health",
		Long: `Report the effective configuration and the state of the database:
which config file was loaded, whether the database is reachable, the
migration version, and basic row counts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)
			report := buildDoctorReport(cmd, cmdCtx.Cfg)

			r := cmdCtx.Renderer
			switch {
			case format == "yaml":
				data, err := yaml.Marshal(report)
				if err != nil {
					return err
				}
				r.Printf("%s", data)
				return nil
			case format == "json" || r.EffectiveMode() == output.ModeJSON:
				return r.JSON(report)
			default:
				renderDoctorText(r, report)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, yaml")

	return cmd
}

func buildDoctorReport(cmd *cobra.Command, cfg *config.Config) *DoctorOutput {
	report := &DoctorOutput{
		ConfigFile: config.FileUsed(),
		Database:   cfg.Database,
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	defer st.Close()
	report.Reachable = true

	if version, err := st.MigrationVersion(); err == nil {
		report.MigrationVersion = version
	}

	ctx := cmd.Context()
	if tables, err := st.Tables(ctx); err == nil {
		report.TableCount = len(tables)
	}
	if err := st.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&report.UserCount); err != nil {
		report.UserCount = 0
	}

	return report
}

func renderDoctorText(r *output.Renderer, report *DoctorOutput) {
	styles := r.Styles()

	r.Header("NextGenFitness Health Report")
	r.Println("")

	configFile := report.ConfigFile
	if configFile == "" {
		configFile = "(defaults)"
	}
	r.Printf("Config file: %s\n", configFile)
	r.Printf("Database:    %s\n", report.Database)

	if !report.Reachable {
		r.Println("Status:      " + styles.Error.Render("unreachable"))
		if report.Error != "" {
			r.Muted("  " + report.Error)
		}
		return
	}

	r.Println("Status:      " + styles.Success.Render("ok"))
	r.Printf("Migrations:  version %d\n", report.MigrationVersion)
	r.Printf("Tables:      %d\n", report.TableCount)
	r.Printf("Users:       %d\n", report.UserCount)
}
