// The server command runs the NextGenFitness account API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nextgenfitness/backend/internal/config"
	"github.com/nextgenfitness/backend/internal/server"
	"github.com/nextgenfitness/backend/internal/store"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "path to config file")
	flags.String("db", "", "path to the SQLite database")
	flags.String("addr", "", "listen address")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		return err
	}
	logger.Debug("database ready", "path", cfg.Database)

	srv := server.NewServer(server.Config{
		Store:       st,
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
		BcryptCost:  cfg.BcryptCost,
		Logger:      logger,
	})

	return srv.Serve(ctx)
}
