// Package main is the entry point for the Meridian catalog service: it
// wires the infrastructure and domain modules, runs pending schema
// migrations, and keeps the catalog services running.
package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/mlmodel"
	"github.com/meridiandata/meridian/domain/pipeline"
	"github.com/meridiandata/meridian/internal/config"
	"github.com/meridiandata/meridian/internal/database"
	"github.com/meridiandata/meridian/internal/migrate"
	"github.com/meridiandata/meridian/internal/version"
	"github.com/meridiandata/meridian/pkg/logger"
)

func main() {
	// Load .env files if present (for local development). Load() won't
	// overwrite existing vars, Overload() will.
	_ = godotenv.Load("../../.env")
	_ = godotenv.Overload("../../.env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,

		// Domain modules
		catalog.Module,
		mlmodel.Module,
		pipeline.Module,

		fx.Invoke(func(log *slog.Logger) {
			log.Info("starting meridian", slog.String("build", version.Get().String()))
		}),
		fx.Invoke(runMigrations),
		fx.Invoke(func(*mlmodel.Service, *pipeline.Service) {}),
	).Run()
}

func runMigrations(lc fx.Lifecycle, migrator *migrate.Migrator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return migrator.Up(ctx)
		},
	})
}
