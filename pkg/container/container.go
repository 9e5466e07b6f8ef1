package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"book-catalog/internal/config"
	infraCache "book-catalog/internal/infrastructure/cache"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/pkg/cache"
	"book-catalog/pkg/jwt"

	bookHandler "book-catalog/internal/domains/book/handler"
	bookRepo "book-catalog/internal/domains/book/repository"
	bookService "book-catalog/internal/domains/book/service"
	relationHandler "book-catalog/internal/domains/relation/handler"
	relationRepo "book-catalog/internal/domains/relation/repository"
	relationService "book-catalog/internal/domains/relation/service"
	"book-catalog/internal/domains/user"
	userRepo "book-catalog/internal/domains/user/repository"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của application.
// Thứ tự khởi tạo: Config → Infrastructure → Repositories → Services → Handlers
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	Redis      *infraCache.RedisCache // nil khi REDIS_ENABLED=false
	JWTManager *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo     user.Repository
	BookRepo     bookRepo.RepositoryInterface
	RelationRepo relationRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	BookService     bookService.ServiceInterface
	RelationService relationService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	BookHandler     *bookHandler.Handler
	RelationHandler *relationHandler.Handler
}

// NewContainer load config và dựng toàn bộ dependency graph
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig dùng cho các command đã tự load config
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log.Info().Str("env", cfg.App.Environment).Msg("Initializing DI container")

	// ========================================
	// STEP 1: DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// ========================================
	// STEP 2: CACHE
	// ========================================
	// Redis lỗi không critical: cache fail-open, service vẫn đọc thẳng DB
	c.Cache = cache.Noop{}
	if cfg.Redis.Enabled {
		rc := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis connection failed (non-critical)")
		}
		c.Redis = rc
		c.Cache = rc
	} else {
		log.Info().Msg("Redis disabled, projections are not cached")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())

	// ========================================
	// STEP 3-5: REPOSITORIES → SERVICES → HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("DI container initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.RelationRepo = relationRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.BookService = bookService.NewService(
		c.BookRepo,
		c.UserRepo, // cross-domain: owner/staff lookup
		c.Cache,
		c.Config.Cache.ProjectionTTL,
	)
	c.RelationService = relationService.NewService(c.RelationRepo, c.UserRepo, c.Cache)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.RelationHandler = relationHandler.NewHandler(c.RelationService)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
		log.Info().Msg("Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		} else {
			log.Info().Msg("Redis connections closed")
		}
	}
}
