package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"procura_backend/internal/auth"
	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/pkg/apperrors"
)

const actorKey = "actor"

// AuthMiddleware validates the Bearer token and stores the resolved actor in
// the request context. Everything behind it can assume a valid identity.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid or expired token"))
			c.Abort()
			return
		}

		actor := models.Actor{UserID: claims.UserID, Role: claims.Role}
		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), actor.UserID))
		c.Next()
	}
}

// RequireRoles rejects actors outside the given role set. Runs after
// AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}
		if !roleSet[actor.Role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the actor resolved by AuthMiddleware.
func GetActor(c *gin.Context) (models.Actor, bool) {
	val, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	return actor, ok
}
