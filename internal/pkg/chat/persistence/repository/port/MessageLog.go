package repository

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
)

// MessageLog is the append-only store of messages scoped to a conversation.
type MessageLog interface {
	// Append persists m with a store-assigned id and timestamp and returns
	// the stored record. Appended messages are durable before Append returns.
	Append(ctx context.Context, m chat.Message) (chat.Message, error)

	// ListByConversation returns messages ascending by (created_at, id).
	// limit <= 0 selects the default page size; offset < 0 is treated as 0.
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)

	// LatestByConversation returns the newest message of the conversation, or
	// apperrors.ErrMessageNotFound when it has none.
	LatestByConversation(ctx context.Context, conversationID string) (chat.Message, error)
}
