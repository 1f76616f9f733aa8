package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-reminder/internal/repository"
)

type linkTelegramRequest struct {
	ChatID int64 `json:"chatId" binding:"required"`
}

func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"status": true,
			"msg":    "Profile found successfully.",
			"user": gin.H{
				"id":             user.ID,
				"name":           user.Name,
				"email":          user.Email,
				"verified":       user.IsVerified,
				"telegramLinked": user.TelegramChatID != 0,
				"joined":         user.CreatedAt,
			},
		})
	}
}

// handleLinkTelegram stores the chat ID used by the optional Telegram
// ping channel. Sending 0 is rejected by binding; unlinking is not a
// thing the original API had either.
func (s *Server) handleLinkTelegram(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req linkTelegramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "chatId is required"})
			return
		}

		user := currentUser(c)
		user.TelegramChatID = req.ChatID
		if err := users.Save(c.Request.Context(), user); err != nil {
			s.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Telegram chat linked"})
	}
}
