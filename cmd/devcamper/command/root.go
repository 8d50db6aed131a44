// Package command provides the devcamper CLI. The root command runs the API
// server and the "seed" sub-command loads or wipes fixture data.
//
//	devcamper                          # start the API server
//	devcamper seed import [--dir ./data]
//	devcamper seed destroy --yes
//
// All settings come from the environment, see internal/config.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/utafrali/devcamper/internal/app"
	"github.com/utafrali/devcamper/internal/config"
	"github.com/utafrali/devcamper/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devcamper",
	Short: "Bootcamp directory API",
	Long: `devcamper serves a REST API for publishing coding bootcamps,
their courses and student reviews, with radius search over geocoded
addresses, photo uploads and role based access control.`,
	SilenceUsage: true,
	RunE:         startServer,
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(app.ServiceName, cfg.LogLevel, cfg.LogFormat), nil
}

func startServer(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	log.Info("starting devcamper",
		slog.String("environment", cfg.Environment),
		slog.String("version", app.Version),
		slog.Int("http_port", cfg.HTTPPort),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	// Cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		return err
	}
	log.Info("devcamper stopped")
	return nil
}

// Execute runs the most specific command for the CLI arguments and exits
// non-zero when it fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server (same as running without a sub-command)",
	Args:  cobra.NoArgs,
	RunE:  startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
