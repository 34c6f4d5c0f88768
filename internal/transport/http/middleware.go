package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/auth"
	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/metrics"
)

const (
	// ContextKeyIdentity is the context key for the authenticated core.Identity.
	ContextKeyIdentity = "identity"

	// TokenCookieName holds the session token for browser clients.
	TokenCookieName = "token"
)

// credentialFromRequest looks for a session token in the cookie, the
// Authorization header and the token query parameter, in that order.
func credentialFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	return r.URL.Query().Get("token")
}

// AuthMiddleware creates a middleware that validates session tokens.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.Verify(credentialFromRequest(c.Request))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("unauthenticated request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// identityFrom returns the identity stored by AuthMiddleware.
func identityFrom(c *gin.Context) (core.Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return core.Identity{}, false
	}
	id, ok := v.(core.Identity)
	return id, ok && !id.IsZero()
}

// LoginRateLimit refuses login attempts beyond the per-IP budget.
func LoginRateLimit(limiter *keyedLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			logger.Warn().Str("ip", c.ClientIP()).Msg("login rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests and records request metrics.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path, status).Observe(elapsed.Seconds())

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", elapsed).
			Msg("http request")
	}
}
