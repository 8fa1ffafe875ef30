package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// SendMessageController handles the send-message endpoint only (one
// controller per endpoint). The same usecase serves websocket sends, so both
// paths share one durable-write-then-broadcast sequence.
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{UC: uc}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("chatId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": "chatId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       middleware.UserID(c),
			Content:        req.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"content":         msg.Content,
			"created_at":      msg.CreatedAt,
		})
	}
}
