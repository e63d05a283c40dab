package rest

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
)

const (
	contextClaimsKey = "session.claims"
	contextRoleKey   = "session.role"
)

func sessionMiddleware(verifier *SessionVerifier, policy *authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.ClaimsFromRequest(c.Request)
		if err == nil {
			c.Set(contextClaimsKey, claims)
			c.Set(contextRoleKey, policy.Resolve(claims))
		}
		c.Next()
	}
}

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFrom(c); !ok {
			writeError(c, authz.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if roleFrom(c) != authz.RoleAdmin {
			writeError(c, authz.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func claimsFrom(c *gin.Context) (authz.Claims, bool) {
	value, ok := c.Get(contextClaimsKey)
	if !ok {
		return authz.Claims{}, false
	}
	claims, ok := value.(authz.Claims)
	return claims, ok
}

func roleFrom(c *gin.Context) authz.Role {
	value, ok := c.Get(contextRoleKey)
	if !ok {
		return authz.RoleEmployee
	}
	role, ok := value.(authz.Role)
	if !ok {
		return authz.RoleEmployee
	}
	return role
}
