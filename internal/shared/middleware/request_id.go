package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"book-catalog/pkg/logger"
)

const (
	ContextRequestID = "request_id"
	HeaderRequestID  = "X-Request-ID"
)

// RequestID gán request id (giữ lại id client gửi lên nếu có) và
// gắn một zerolog logger mang request_id vào request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		l := log.With().Str(ContextRequestID, id).Logger()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), l))

		c.Next()
	}
}
