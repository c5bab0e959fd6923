package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tagserver/auth"
	"tagserver/models"
)

// RequireAuth validates the x-access-token header and stores the
// authenticated user in the gin context for downstream handlers.
func RequireAuth(directory *auth.UserDirectory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-access-token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token is missing"})
			return
		}
		user, ok := directory.UserByToken(c.Request.Context(), token)
		if !ok {
			logger.Debug("Rejected request with invalid access token", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token is invalid or expired"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
