package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractdesk/backend/pkg/logger"
)

// Recovery turns a handler panic into a 500. A response that is already
// partly written is cut off instead, since its status can no longer change.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			log := logger.WithContext(ctx)
			log.Error("panic recovered",
				"error", fmt.Sprint(rec),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"written", c.Writer.Written(),
			)
			if log.Enabled(ctx, slog.LevelDebug) {
				log.Debug("panic stack", "stack", string(debug.Stack()))
			}

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": GetRequestID(c),
				"session_id": GetSessionID(c),
			})
		}()

		c.Next()
	}
}
