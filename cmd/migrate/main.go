// Command migrate áp dụng schema migrations (embedded trong binary).
//
// Usage:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate version
//	go run ./cmd/migrate force 1
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/config"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/migrations"
	"book-catalog/pkg/logger"
)

const usage = "Usage: migrate [up|down|version|force <version>]"

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database config")
	}

	mg, err := database.NewMigrator(dbConfig.DSN(), migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close migrator")
		}
	}()

	if err := run(mg, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}
}

func run(mg *database.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	case "force":
		if len(args) != 2 {
			return fmt.Errorf("force requires a version, %s", usage)
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return mg.Force(v)
	default:
		return fmt.Errorf("unknown command %q, %s", args[0], usage)
	}
}
