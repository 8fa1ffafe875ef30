package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// OpenDirectChatController handles the open-direct-conversation endpoint
// (one controller per endpoint).
type OpenDirectChatController struct {
	UC *usecase.OpenDirectChatUseCase
}

func NewOpenDirectChatController(uc *usecase.OpenDirectChatUseCase) *OpenDirectChatController {
	return &OpenDirectChatController{UC: uc}
}

type openDirectChatRequest struct {
	OtherID string `json:"other_id" binding:"required"`
}

func (h *OpenDirectChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openDirectChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.OpenDirectChatInput{
			RequesterID: middleware.UserID(c),
			OtherID:     req.OtherID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         conv.ID,
			"kind":       conv.Kind,
			"created_at": conv.CreatedAt,
		})
	}
}
