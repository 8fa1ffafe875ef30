package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// DeleteConversationController accepts a deletion request and schedules the
// cascade for background execution.
type DeleteConversationController struct {
	UC *usecase.DeleteConversationUseCase
}

func NewDeleteConversationController(uc *usecase.DeleteConversationUseCase) *DeleteConversationController {
	return &DeleteConversationController{UC: uc}
}

func (h *DeleteConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("chatId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": "chatId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.DeleteConversationInput{
			RequesterID:    middleware.UserID(c),
			ConversationID: conversationID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"status": "deletion scheduled", "id": conversationID})
	}
}
