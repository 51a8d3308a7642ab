package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tour_booking/internal/app"
	"github.com/Freeeeeet/tour_booking/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withApp загружает конфиг, собирает приложение и вызывает fn.
// Контекст отменяется по SIGINT/SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", zap.Error(err))
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func migrate(ctx context.Context, a *app.App, fn func(ctx context.Context, m *app.Migrator) error) error {
	if a.Pool == nil {
		return fmt.Errorf("migrations need STORE_DRIVER=%s", config.StoreDriverPostgres)
	}

	migrator, err := app.NewMigrator(a.Pool, a.Logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return fn(ctx, migrator)
}

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Pool != nil && !skipMigrations {
					err := migrate(ctx, a, func(ctx context.Context, m *app.Migrator) error {
						return m.Up(ctx)
					})
					if err != nil {
						return err
					}
				}

				a.Logger.Info("Starting tour booking service", zap.String("environment", a.Config.Environment))
				return a.Serve(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations on start")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return migrate(ctx, a, func(ctx context.Context, m *app.Migrator) error {
					return m.Up(ctx)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return migrate(ctx, a, func(ctx context.Context, m *app.Migrator) error {
					return m.Down(ctx)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return migrate(ctx, a, func(ctx context.Context, m *app.Migrator) error {
					version, err := m.Version(ctx)
					if err != nil {
						return err
					}
					cmd.Printf("Migration version: %d\n", version)
					return nil
				})
			})
		},
	})

	return cmd
}
