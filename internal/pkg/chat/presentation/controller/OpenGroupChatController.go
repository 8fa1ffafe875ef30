package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// OpenGroupChatController handles the create-group-conversation endpoint.
type OpenGroupChatController struct {
	UC *usecase.OpenGroupChatUseCase
}

func NewOpenGroupChatController(uc *usecase.OpenGroupChatUseCase) *OpenGroupChatController {
	return &OpenGroupChatController{UC: uc}
}

type openGroupChatRequest struct {
	MemberIDs []string `json:"member_ids" binding:"required"`
}

func (h *OpenGroupChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openGroupChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.OpenGroupChatInput{
			CreatorID: middleware.UserID(c),
			MemberIDs: req.MemberIDs,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         conv.ID,
			"kind":       conv.Kind,
			"created_by": conv.CreatedBy,
			"created_at": conv.CreatedAt,
		})
	}
}
