package middleware

import (
	"strings"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"eventnest/internal/dto"
	"eventnest/internal/policy"
	"eventnest/internal/service"
	"eventnest/internal/token"
)

func LoggingMiddleware() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Auth extracts and validates the bearer token, placing the caller into the
// request context. Missing token is 401, a bad or expired one is 403.
func Auth(secret string) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			dto.UnauthorizedError(c, "Authentication required")
			c.Abort()
			return
		}

		uc, err := token.Parse(raw, secret)
		if err != nil {
			dto.ForbiddenError(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(service.UserContextKey, uc)
		c.Next()
	}
}

// Authorize gates a route on the caller's role. Runs after Auth.
func Authorize(action policy.Action) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		v, ok := c.Get(service.UserContextKey)
		if !ok {
			dto.UnauthorizedError(c, "Authentication required")
			c.Abort()
			return
		}

		uc, ok := v.(*token.UserContext)
		if !ok || !policy.Allow(uc.Role, action) {
			dto.ForbiddenError(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
