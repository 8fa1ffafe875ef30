package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// GetHistoryController handles fetching a conversation's messages.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(uc *usecase.GetHistoryUseCase) *GetHistoryController {
	return &GetHistoryController{UC: uc}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("chatId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": "chatId is required"})
			return
		}

		// Defaults
		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			RequesterID:    middleware.UserID(c),
			ConversationID: conversationID,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":              m.ID,
				"conversation_id": m.ConversationID,
				"sender_id":       m.SenderID,
				"content":         m.Content,
				"created_at":      m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"limit":    limit,
			"offset":   offset,
			"count":    len(out),
		})
	}
}
