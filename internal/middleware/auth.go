package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"propertystore/internal/authz"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxName   = "user_name"
)

// bearerToken достаёт токен из заголовка Authorization: Bearer <token>.
func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth проверяет JWT и прокидывает пользователя и роль в контекст.
func Auth(tokens *authz.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			// браузерный WebSocket не умеет ставить заголовки
			tokenStr = c.Query("access_token")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxName, claims.Name)
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(CtxUserID) }

func Role(c *gin.Context) string { return c.GetString(CtxRole) }
