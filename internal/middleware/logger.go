// Package middleware holds the cross-cutting HTTP concerns: request
// identity, access logging, panic recovery, and CORS.
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Health checks poll constantly; keep them out of the access log.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
}

// RequestID tags the request with an id, keeping one supplied by the caller,
// and echoes it in the X-Request-ID response header so an API call can be
// matched to its log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// AccessLog writes one line per API request: request id, client address,
// method, path with query, status, latency, and the last error a handler
// recorded on the context, if any.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		suffix := ""
		if last := c.Errors.Last(); last != nil {
			suffix = " err=" + last.Error()
		}
		log.Printf("[%s] %s %s %s %d %s%s",
			c.GetString("request_id"),
			c.ClientIP(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			suffix,
		)
	}
}

// Recovery turns a handler panic into the API's JSON error envelope instead
// of gin's default empty 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("[%s] panic recovered: %v", c.GetString("request_id"), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
