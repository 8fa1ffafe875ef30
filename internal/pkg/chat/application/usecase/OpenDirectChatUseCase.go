package usecase

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// OpenDirectChatInput identifies the two parties of a direct conversation.
type OpenDirectChatInput struct {
	RequesterID string
	OtherID     string
}

// OpenDirectChatUseCase opens (or finds) the single direct conversation for a
// pair of users. Losing the creation race is recovered inside the store and
// never surfaces to the caller.
type OpenDirectChatUseCase struct {
	Store repository.ConversationStore
}

func NewOpenDirectChatUseCase(store repository.ConversationStore) *OpenDirectChatUseCase {
	return &OpenDirectChatUseCase{Store: store}
}

func (uc *OpenDirectChatUseCase) Execute(ctx context.Context, in OpenDirectChatInput) (chat.Conversation, error) {
	if in.RequesterID == "" || in.OtherID == "" {
		return chat.Conversation{}, apperrors.InvalidInput("requester id and other id are required")
	}
	if in.RequesterID == in.OtherID {
		return chat.Conversation{}, apperrors.ErrSelfChat
	}

	conv, err := uc.Store.CreateDirect(ctx, in.RequesterID, in.OtherID)
	if err != nil {
		return chat.Conversation{}, storeErr(err)
	}
	return conv, nil
}
