// Command recompute tính lại rating cho mọi book.
// Dùng sau khi xoá user: relation bị cascade nhưng rating trên book không tự cập nhật.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/config"
	"book-catalog/pkg/container"
	"book-catalog/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.Log.Level)

	c, err := container.NewContainerWithConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	n, err := c.RelationService.RecomputeAll(ctx)
	if err != nil {
		log.Error().Err(err).Int("recomputed", n).Msg("Rating recompute failed")
		c.Cleanup()
		os.Exit(1)
	}

	log.Info().Int("books", n).Dur("took", time.Since(start)).Msg("Ratings recomputed")
}
