package chat

// UserSummary is the read-only projection of a user owned by the identity
// side. The chat core reads it for conversation-list previews and never
// writes it.
type UserSummary struct {
	ID          string  `db:"id"`
	DisplayName string  `db:"display_name"`
	AvatarRef   *string `db:"avatar_ref"`
}

// ConversationPreview is one row of a user's conversation list: the
// conversation, the other participant (direct only) and the latest message,
// if any.
type ConversationPreview struct {
	Conversation  Conversation
	Other         *UserSummary
	LatestMessage *Message
}
