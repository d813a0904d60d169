package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/projectshelf/internal/infra/config"
	"github.com/yanqian/projectshelf/internal/infra/migrations"
	"github.com/yanqian/projectshelf/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "projectshelf",
		Short:         "ProjectShelf portfolio API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("CONFIG_PATH", configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(migrateCmd())
	return cmd
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("application stopped with error: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the Postgres schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Postgres.DSN == "" {
				return errors.New("postgres.dsn (POSTGRES_DSN) is required for migrations")
			}
			log := logger.New().With("component", "migrate")
			switch args[0] {
			case "up":
				if err := migrations.Up(cfg.Postgres.DSN); err != nil {
					return err
				}
			case "down":
				if err := migrations.Down(cfg.Postgres.DSN, steps); err != nil {
					return err
				}
			}
			log.Info("migrations applied", "direction", args[0], "steps", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back (down only)")
	return cmd
}
