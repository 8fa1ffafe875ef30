package chat

import (
	"strings"
	"time"

	"crm-chat/pkg/apperrors"
)

// Message is an immutable log entry in a conversation. IDs are assigned by
// the store and grow monotonically, which makes (CreatedAt, ID) a stable
// ordering key even when two messages share a timestamp.
type Message struct {
	ID             int64     `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

// NewMessage validates and normalizes an outgoing message before it reaches
// the store. CreatedAt and ID are left for the store to assign.
func NewMessage(conversationID, senderID, content string) (Message, error) {
	if conversationID == "" || senderID == "" {
		return Message{}, apperrors.InvalidInput("conversation id and sender id are required")
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, apperrors.ErrEmptyContent
	}
	return Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
	}, nil
}
