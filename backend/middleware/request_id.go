package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AnTengye/contractdesk/backend/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Session-ID"
)

// sessionIssuedKey marks requests whose session id was generated here
// rather than sent by the client
const sessionIssuedKey = "session_issued"

// RequestID tags each request with the caller's X-Request-ID or a fresh one
func RequestID() gin.HandlerFunc {
	return tagRequest(HeaderRequestID, logger.RequestIDKey)
}

// Session identifies the browser session that owns the table state. Clients
// echo the X-Session-ID they were first handed; requests without one start a
// new session.
func Session() gin.HandlerFunc {
	return tagRequest(HeaderSessionID, logger.SessionIDKey)
}

func tagRequest(header string, key logger.ContextKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.New().String()
			if key == logger.SessionIDKey {
				c.Set(sessionIssuedKey, true)
			}
		}
		c.Header(header, id)
		c.Set(string(key), id)

		ctx := context.WithValue(c.Request.Context(), key, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(logger.RequestIDKey))
}

// GetSessionID returns the session id set by Session, or ""
func GetSessionID(c *gin.Context) string {
	return c.GetString(string(logger.SessionIDKey))
}

// SessionIssued reports whether the session id of this request was generated
// by Session instead of being sent by the client
func SessionIssued(c *gin.Context) bool {
	return c.GetBool(sessionIssuedKey)
}
