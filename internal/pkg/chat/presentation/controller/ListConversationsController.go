package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
)

// ListConversationsController handles the conversation-list endpoint.
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		previews, err := h.UC.Execute(ctx, usecase.ListConversationsInput{
			UserID: middleware.UserID(c),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, 0, len(previews))
		for _, p := range previews {
			row := gin.H{
				"id":         p.Conversation.ID,
				"kind":       p.Conversation.Kind,
				"created_at": p.Conversation.CreatedAt,
			}
			if p.Other != nil {
				row["other"] = gin.H{
					"id":           p.Other.ID,
					"display_name": p.Other.DisplayName,
					"avatar_ref":   p.Other.AvatarRef,
				}
			}
			if p.LatestMessage != nil {
				row["latest_message"] = gin.H{
					"id":         p.LatestMessage.ID,
					"sender_id":  p.LatestMessage.SenderID,
					"content":    p.LatestMessage.Content,
					"created_at": p.LatestMessage.CreatedAt,
				}
			}
			out = append(out, row)
		}

		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
