package usecase

import (
	"context"
	"encoding/json"
	"time"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// EventMessageCreated is the only event type delivered to connected clients.
const EventMessageCreated = "message.created"

// MessageCreatedEvent is the wire shape broadcast to every connection joined
// to the conversation's room.
type MessageCreatedEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversationId"`
	MessageID      int64     `json:"messageId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Broadcaster fans one payload out to the live members of a room. Delivery is
// best-effort; the return value only counts accepted sends.
type Broadcaster interface {
	Broadcast(conversationID string, payload []byte) int
}

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageUseCase validates, durably appends, then broadcasts. The append
// always completes before any live connection can observe the message, and
// the persisted message is returned to the caller whether or not anyone was
// connected.
type SendMessageUseCase struct {
	Store   repository.ConversationStore
	Log     repository.MessageLog
	Gateway Broadcaster
}

func NewSendMessageUseCase(store repository.ConversationStore, log repository.MessageLog, gw Broadcaster) *SendMessageUseCase {
	return &SendMessageUseCase{Store: store, Log: log, Gateway: gw}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (chat.Message, error) {
	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return chat.Message{}, err
	}

	isMember, err := uc.Store.IsMember(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return chat.Message{}, storeErr(err)
	}
	if !isMember {
		return chat.Message{}, apperrors.ErrNotAMember
	}

	stored, err := uc.Log.Append(ctx, msg)
	if err != nil {
		return chat.Message{}, storeErr(err)
	}

	// Fan-out happens only after the append is durable. Zero receivers is
	// normal; absent participants read the message from history later.
	if uc.Gateway != nil {
		if payload, err := json.Marshal(MessageCreatedEvent{
			Type:           EventMessageCreated,
			ConversationID: stored.ConversationID,
			MessageID:      stored.ID,
			SenderID:       stored.SenderID,
			Content:        stored.Content,
			CreatedAt:      stored.CreatedAt,
		}); err == nil {
			uc.Gateway.Broadcast(stored.ConversationID, payload)
		}
	}

	return stored, nil
}
