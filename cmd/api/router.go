package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"book-catalog/internal/shared/middleware"
	"book-catalog/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookRoutes(v1, c)
		setupRelationRoutes(v1, c)
	}

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
// Đọc cho phép anonymous; ghi bắt buộc đăng nhập, quyền owner/staff check ở service
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	optionalAuth := middleware.OptionalAuthMiddleware(c.JWTManager)
	auth := middleware.AuthMiddleware(c.JWTManager)

	books := v1.Group("/books")
	{
		books.GET("", optionalAuth, c.BookHandler.ListBooks)
		books.GET("/:id", optionalAuth, c.BookHandler.GetBook)
		books.POST("", auth, c.BookHandler.CreateBook)
		books.PUT("/:id", auth, c.BookHandler.UpdateBook)
		books.PATCH("/:id", auth, c.BookHandler.PatchBook)
		books.DELETE("/:id", auth, c.BookHandler.DeleteBook)
	}
}

// ========================================
// BOOK RELATION ROUTES
// ========================================
func setupRelationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	relations := v1.Group("/book_relation")
	relations.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		relations.PUT("/:book_id", c.RelationHandler.UpdateRelation)
		relations.PATCH("/:book_id", c.RelationHandler.PatchRelation)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
// Redis down chỉ là degraded (cache fail-open), DB down trả 503
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}
		if dbStatus != "ok" {
			status = "degraded"
		}

		redisStatus := "disabled"
		if appCtx.Redis != nil {
			redisStatus = "ok"
			if err := appCtx.Redis.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
				status = "degraded"
			}
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	}
}
