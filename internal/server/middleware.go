package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auction-house/services/auction/helpers"
	"auction-house/utils"
)

// TokenValidator resolves a bearer token to the user id it was issued for
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// ErrMissingAuthHeader marks requests without an Authorization header
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id on the context.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "authentication required")
			utils.Warn("RequireAuth: missing or malformed Authorization header", map[string]any{"path": c.Request.URL.Path})
			c.Abort()
			return
		}

		userID, err := validator.ValidateToken(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, errors.New("invalid or expired token"), "authentication required")
			utils.Warn("RequireAuth: token rejected", map[string]any{"path": c.Request.URL.Path, "error": err.Error()})
			c.Abort()
			return
		}

		c.Set(helpers.ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid token is present
// but lets anonymous requests through. Used on read endpoints that enrich
// their response for signed-in users.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err == nil {
			if userID, err := validator.ValidateToken(token); err == nil {
				c.Set(helpers.ContextUserIDKey, userID)
			}
		}
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed Authorization header")
	}
	return parts[1], nil
}
