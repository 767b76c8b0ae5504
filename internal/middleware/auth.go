package middleware

import (
	"net/http"

	"quantumeyes/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ключи cookie-сессии
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

// SessionUserIDFrom достаёт id пользователя из сессии.
func SessionUserIDFrom(c *gin.Context) (uint, bool) {
	uid, ok := sessions.Default(c).Get(SessionUserID).(uint)
	return uid, ok && uid > 0
}

func SessionRoleFrom(c *gin.Context) models.UserRole {
	roleStr, _ := sessions.Default(c).Get(SessionRole).(string)
	return models.UserRole(roleStr)
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionUserIDFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := SessionRoleFrom(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}

		if _, ok := roleSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "access denied"})
			return
		}
		c.Next()
	}
}
