package usecase

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// ListConversationsInput wraps the requesting user id.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the user's conversation list with
// previews, most recently active first.
type ListConversationsUseCase struct {
	Store repository.ConversationStore
}

func NewListConversationsUseCase(store repository.ConversationStore) *ListConversationsUseCase {
	return &ListConversationsUseCase{Store: store}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.ConversationPreview, error) {
	if in.UserID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	previews, err := uc.Store.ListFor(ctx, in.UserID)
	if err != nil {
		return nil, storeErr(err)
	}
	return previews, nil
}
