package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/model"
)

// Logging logs every HTTP request once it has been served.
func Logging(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request failed", append(args, "errors", c.Errors.String())...)
		default:
			logger.Info("HTTP request completed", args...)
		}
	}
}

// Recovery turns panics into a 500 envelope.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("HTTP handler panicked",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Message: "internal server error"})
	})
}

// Authenticate resolves the bearer token into an admin caller and stores it
// in the request context.
func Authenticate(authenticator Authenticator, contextManager model.ContextManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		caller, err := authenticator.AuthenticateAdmin(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(contextManager.SetCallerToContext(c.Request.Context(), caller))
		c.Next()
	}
}

func bearerToken(header string) string {
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
