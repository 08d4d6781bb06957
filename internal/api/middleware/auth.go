package middleware

import (
	"net/http"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/services"
	"github.com/crestline-ir/internal/store"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	sessions *services.SessionService
	users    store.UserStore
}

func NewAuthMiddleware(sessions *services.SessionService, users store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		users:    users,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := c.Cookie("session_token")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, valid := am.sessions.Validate(sessionToken)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		user, err := am.users.Get(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("email", user.Email)
		c.Set("role", user.Role)
		c.Next()
	}
}

func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(models.UserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			return
		}
		c.Next()
	}
}
