package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// SessionHeader carries the dashboard session identifier.
	SessionHeader = "X-Session-ID"
	// SessionQueryParam is accepted when the header cannot be set.
	SessionQueryParam = "sessionId"

	ContextSessionKey = "dashboard_session_id"
)

// Session copies the dashboard session identifier from the request onto the
// context. The header wins over the query parameter.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id = strings.TrimSpace(c.Query(SessionQueryParam))
		}
		if id != "" {
			c.Set(ContextSessionKey, id)
		}
		c.Next()
	}
}

// SessionID returns the session identifier stored by Session, or "".
func SessionID(c *gin.Context) string {
	if v, exists := c.Get(ContextSessionKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
