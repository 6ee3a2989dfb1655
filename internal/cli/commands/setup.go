// Package commands implements the admin CLI subcommands and the interactive
// shell.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/config"
	"github.com/nextgenfitness/backend/internal/store"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in ctx. The root command calls
// this once after config resolution.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFrom returns the configuration stored in ctx, or a default one.
func ConfigFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{
		Database:   config.DefaultDatabase,
		Addr:       config.DefaultAddr,
		ExportsDir: config.DefaultExportsDir,
		BackupsDir: config.DefaultBackupsDir,
		BcryptCost: config.DefaultBcryptCost,
		Output:     config.DefaultOutput,
	}
}

// WithLogger stores the logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger stored in ctx, or a discarding default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Renderer *output.Renderer
}

// NewCommandContext opens the store and builds the renderer. The returned
// cleanup function closes the store and must be called, typically via defer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	st, err := store.Open(cmdCtx.Cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cmdCtx.Cfg.Database, err)
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	cmdCtx.Store = st
	cleanup := func() {
		_ = st.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore builds a CommandContext for commands that do
// not touch the database.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := ConfigFrom(ctx)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   LoggerFrom(ctx),
		Renderer: r,
	}
}

// logged wraps a mutating operation with an admin_log entry. The operation
// row is written before fn runs and completed with its outcome after.
func logged(ctx context.Context, st *store.Store, name, table, detail string, fn func() error) error {
	op, err := st.BeginOperation(ctx, name, table, detail)
	if err != nil {
		return err
	}

	if err := fn(); err != nil {
		_ = st.CompleteOperation(ctx, op.ID, store.OperationFailed, err.Error())
		return err
	}

	return st.CompleteOperation(ctx, op.ID, store.OperationSuccess, "")
}
