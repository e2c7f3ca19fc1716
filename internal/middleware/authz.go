package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"propertystore/internal/authz"
)

// RequireRoles пропускает только перечисленные роли.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return requireRole(func(role string) bool { return slices.Contains(allowed, role) })
}

// RequireStaff пропускает риелторов и администраторов, но не клиентов портала.
func RequireStaff() gin.HandlerFunc {
	return requireRole(authz.IsStaff)
}

func requireRole(ok func(role string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		if !ok(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
