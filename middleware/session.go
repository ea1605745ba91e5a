package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionHeader = "X-Session-Id"
	sessionKey    = "session_id"
)

// Session resolves the caller's session ID from the X-Session-Id header,
// minting a new one when absent. The resolved ID is echoed back in the
// response header so clients can persist it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Set(sessionKey, sessionID)
		c.Writer.Header().Set(sessionHeader, sessionID)
		c.Next()
	}
}

// SessionID returns the session ID resolved by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
