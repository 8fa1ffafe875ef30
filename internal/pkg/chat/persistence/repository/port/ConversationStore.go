package repository

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
)

// ConversationStore defines persistence operations for conversations and
// membership. FindDirect/CreateDirect are symmetric in argument order.
type ConversationStore interface {
	// FindDirect returns the direct conversation whose membership is exactly
	// {a, b}, or apperrors.ErrConversationNotFound.
	FindDirect(ctx context.Context, a, b string) (chat.Conversation, error)

	// CreateDirect creates the direct conversation for {a, b} together with
	// both membership rows in one atomic unit. When a concurrent creator
	// commits first, the already-committed winner is returned instead of an
	// error, so every racer converges on the same conversation id.
	CreateDirect(ctx context.Context, a, b string) (chat.Conversation, error)

	// CreateGroup creates a group conversation owned by creator with one
	// membership row per distinct member; the creator is always a member.
	CreateGroup(ctx context.Context, creator string, memberIDs []string) (chat.Conversation, error)

	// IsMember reports whether userID belongs to the conversation.
	IsMember(ctx context.Context, conversationID, userID string) (bool, error)

	// Get returns the conversation by id, or apperrors.ErrConversationNotFound.
	Get(ctx context.Context, conversationID string) (chat.Conversation, error)

	// ListFor returns the user's conversations with previews, ordered by
	// latest message time descending; conversations with no messages come
	// last.
	ListFor(ctx context.Context, userID string) ([]chat.ConversationPreview, error)

	// Delete removes a conversation and everything under it, messages before
	// memberships before the conversation row.
	Delete(ctx context.Context, conversationID string) error
}
