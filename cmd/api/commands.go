package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"timeRegistration/internal/app"
	"timeRegistration/internal/config"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/migrations"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	var configPath, envFile string

	root := &cobra.Command{
		Use:          "time-registration",
		Short:        "Учёт рабочего времени по заказчикам, проектам и задачам",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("чтение %s: %w", envFile, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "путь к config.yml")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "файл с переменными окружения")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Запустить http сервер и фоновые задачи",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		newMigrateCommand(&configPath),
		&cobra.Command{
			Use:   "sweep",
			Short: "Один проход сверки незакрытых сессий",
			RunE: func(cmd *cobra.Command, args []string) error {
				return sweep(cmd.Context(), configPath)
			},
		},
	)
	return root
}

func newMigrateCommand(configPath *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Миграции схемы postgres",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Применить все миграции",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadForMigrations(*configPath)
				if err != nil {
					return err
				}
				return migrations.Up(cfg.Database.URL)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Откатить миграции, по умолчанию одну",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("неверное число шагов: %q", args[0])
					}
					steps = n
				}
				cfg, err := loadForMigrations(*configPath)
				if err != nil {
					return err
				}
				return migrations.Down(cfg.Database.URL, steps)
			},
		},
	)
	return migrate
}

func loadForMigrations(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return nil, err
	}
	if cfg.Repository.Type != config.RepositoryPostgres {
		return nil, errors.New("миграции нужны только для repository.type=postgres")
	}
	return cfg, nil
}

func serve(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		a.Close()
		return err
	}
	return a.Run(ctx)
}

func sweep(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	a := app.New(cfg)
	defer a.Close()
	if err := a.Init(ctx); err != nil {
		return err
	}

	result := a.Sweep(ctx)
	logger.Info("Сверка завершена",
		zap.Int("checked", result.Checked),
		zap.Int("closed", result.Closed),
		zap.Int("failed", result.Failed),
		zap.Bool("skipped", result.Skipped))
	return nil
}
