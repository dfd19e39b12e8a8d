package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when the role check fails (optional)
	OnDenied func(c *gin.Context, requiredRole string)
}

// RequireRole creates middleware that requires a specific role.
// The JWT middleware must run first so claims are in the context.
func RequireRole(role string) gin.HandlerFunc {
	return RequireRoleWithConfig(role, RoleConfig{})
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(role string, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, deniedBody("UNAUTHORIZED", "Authentication required"))
			return
		}

		if claims.Role != role {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Role check failed",
					zap.String("account_id", claims.AccountID),
					zap.String("role", claims.Role),
					zap.String("required_role", role),
					zap.String("path", c.Request.URL.Path),
				)
			}
			if cfg.OnDenied != nil {
				cfg.OnDenied(c, role)
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, deniedBody("FORBIDDEN", "Insufficient privileges"))
			return
		}

		c.Next()
	}
}

// RequireAdmin creates middleware that only lets admin accounts through
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}

func deniedBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
