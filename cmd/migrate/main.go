// Command migrate applies, rolls back, or reports the schema migrations
// without starting the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/meridiandata/meridian/internal/config"
	"github.com/meridiandata/meridian/internal/migrate"
	"github.com/meridiandata/meridian/pkg/logger"
)

func main() {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Overload("../../.env.local")

	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	log := logger.NewLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, log)

	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "version":
		var version int64
		if version, err = migrator.Version(ctx); err == nil {
			fmt.Println(version)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down|status|version]\n")
		os.Exit(1)
	}
	if err != nil {
		log.Error("migration failed", slog.String("command", command), logger.Error(err))
		os.Exit(1)
	}
}
