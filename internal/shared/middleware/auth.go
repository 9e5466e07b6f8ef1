package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/shared/response"
	"book-catalog/pkg/jwt"
)

const (
	// ContextUserID là key lưu uuid.UUID của user đã xác thực trong gin context
	ContextUserID = "userID"
	// ContextUsername từ claims, chỉ dùng cho logging
	ContextUsername = "username"
)

// TokenValidator được implement bởi *jwt.Manager
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware - bắt buộc có Bearer token hợp lệ, 401 nếu thiếu hoặc sai
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, errMsg := authenticate(c, tokens)
		if errMsg != "" {
			response.Abort(c, 401, response.CodeUnauthorized, errMsg)
			return
		}
		if userID == uuid.Nil {
			response.Abort(c, 401, response.CodeUnauthorized, "Authentication credentials were not provided")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUsername, username)
		c.Next()
	}
}

// OptionalAuthMiddleware - cho phép anonymous request.
// Header có mặt nhưng token sai vẫn trả về 401.
func OptionalAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, errMsg := authenticate(c, tokens)
		if errMsg != "" {
			response.Abort(c, 401, response.CodeUnauthorized, errMsg)
			return
		}
		if userID != uuid.Nil {
			c.Set(ContextUserID, userID)
			c.Set(ContextUsername, username)
		}
		c.Next()
	}
}

// authenticate trả về uuid.Nil và errMsg rỗng khi không có Authorization header
func authenticate(c *gin.Context, tokens TokenValidator) (uuid.UUID, string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", ""
	}

	// "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return uuid.Nil, "", "Invalid authorization header format"
	}

	claims, err := tokens.ValidateAccessToken(parts[1])
	if err != nil {
		log.Debug().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("token rejected")
		return uuid.Nil, "", "Invalid or expired token"
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", "Invalid user ID in token"
	}

	return userID, claims.Username, ""
}

// GetUserID trả về user đã xác thực, ok = false với anonymous request
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
