// Command token in ra access token cho một user đã tồn tại (dev helper).
//
// Usage:
//
//	go run ./cmd/token -user 7f1f0b3e-1b7a-4a53-9d55-5f3b1a0c2c11
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/config"
	"book-catalog/internal/domains/user"
	userRepo "book-catalog/internal/domains/user/repository"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/pkg/jwt"
	"book-catalog/pkg/logger"
)

var userFlag = flag.String("user", "", "id (UUID) of an existing user")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.Log.Level)

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: token -user <uuid>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(cfg.Database)
	if err := db.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	token, err := issue(ctx, userRepo.NewPostgresRepository(db.Pool), tokens, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Cannot issue token")
		db.Close()
		os.Exit(1)
	}

	fmt.Println(token)
}

// issue chỉ ký token cho user có trong bảng users
func issue(ctx context.Context, users user.Repository, tokens *jwt.Manager, userID uuid.UUID) (string, error) {
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return tokens.GenerateAccessToken(u.ID.String(), u.Username)
}
