package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/sysutil"
)

// HeaderUserID carries the caller's profile id. Authentication happens in
// front of this service; the header is trusted as-is.
const HeaderUserID = "X-User-ID"

const ctxKeyUserID = "userID"

// CallerID copies X-User-ID into the Gin context so rate limiting, logging
// and idempotency can key on it. Requests without the header pass through.
func CallerID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			c.Set(ctxKeyUserID, id)
		}
		c.Next()
	}
}

// RequireCaller rejects requests that carry no caller id with 401.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing "+HeaderUserID+" header")
			return
		}
		c.Next()
	}
}

// UserID returns the caller id stored by CallerID.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// CronOnly guards scheduler endpoints. When required is true the request must
// carry header with a truthy value ("X-CloudScheduler: true"); the edge
// strips that header from external traffic.
func CronOnly(header string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required && !sysutil.IsTruthy(c.GetHeader(header)) {
			abortJSON(c, http.StatusForbidden, "forbidden", "scheduler header required")
			return
		}
		c.Next()
	}
}

// abortJSON writes the shared error envelope from middleware, which cannot
// import the handlers package.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
