package usecase

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// GetHistoryInput carries parameters to read a conversation's messages.
type GetHistoryInput struct {
	RequesterID    string
	ConversationID string
	Limit          int
	Offset         int
}

// GetHistoryUseCase reads persisted messages in (created_at, id) order.
// Non-members are rejected before any row is read.
type GetHistoryUseCase struct {
	Store repository.ConversationStore
	Log   repository.MessageLog
}

func NewGetHistoryUseCase(store repository.ConversationStore, log repository.MessageLog) *GetHistoryUseCase {
	return &GetHistoryUseCase{Store: store, Log: log}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]chat.Message, error) {
	if in.RequesterID == "" || in.ConversationID == "" {
		return nil, apperrors.InvalidInput("requester id and conversation id are required")
	}

	isMember, err := uc.Store.IsMember(ctx, in.ConversationID, in.RequesterID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isMember {
		return nil, apperrors.ErrNotAMember
	}

	msgs, err := uc.Log.ListByConversation(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}
