package server

import (
	"bidding-room/internal/auth"
	"bidding-room/services/bidding/handler"
	"bidding-room/utils"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
		"user_id": c.GetString(handler.ContextUserID),
	})
}

// AuthMiddleware stores the authenticated user under handler.ContextUserID.
// Missing credentials pass through anonymously; invalid ones are refused.
func AuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticator.FromRequest(c.Request)
		switch {
		case err == nil:
			c.Set(handler.ContextUserID, userID)
		case errors.Is(err, auth.ErrNoCredentials):
		default:
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid credentials")
			c.Abort()
			return
		}
		c.Next()
	}
}
