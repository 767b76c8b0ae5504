package middleware

import (
	"context"

	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

const CurrentUserKey = "CurrentUser"

type UserGetter interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// InjectUser кладёт в контекст пользователя из сессии, если он есть в БД.
func InjectUser(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := SessionUserIDFrom(c); ok {
			if user, err := users.GetUser(c.Request.Context(), uid); err == nil {
				c.Set(CurrentUserKey, user)
			}
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
