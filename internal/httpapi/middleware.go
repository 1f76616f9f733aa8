package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
	"task-reminder/internal/service"
)

const userKey = "user"

// AuthRequired validates the Bearer token and loads the account into the
// request context.
func AuthRequired(tokens *service.TokenService, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "msg": "No token, authorization denied"})
			return
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "msg": "Invalid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": false, "msg": "User not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": false, "msg": "Internal Server Error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}
