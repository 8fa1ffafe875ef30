package usecase

import (
	"context"

	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// JoinConversationInput validates a request to attach a user session to a
// conversation's room.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user belongs to the conversation before
// the gateway admits the connection into the room.
type JoinConversationUseCase struct {
	Store repository.ConversationStore
}

func NewJoinConversationUseCase(store repository.ConversationStore) *JoinConversationUseCase {
	return &JoinConversationUseCase{Store: store}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return apperrors.InvalidInput("conversation id and user id are required")
	}

	ok, err := uc.Store.IsMember(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return apperrors.ErrNotAMember
	}
	return nil
}
