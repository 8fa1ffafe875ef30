package usecase

import (
	"context"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// DeleteConversationInput identifies the conversation and who asked.
type DeleteConversationInput struct {
	RequesterID    string
	ConversationID string
}

// Enqueuer schedules the cascade for background execution; the request path
// only performs the permission check.
type Enqueuer interface {
	EnqueueDelete(ctx context.Context, conversationID string) error
}

// DeleteConversationUseCase authorizes a deletion and hands the cascade
// (messages, then memberships, then the conversation row) to the queue.
// Either direct member may delete a direct conversation; only the creator
// may delete a group.
type DeleteConversationUseCase struct {
	Store repository.ConversationStore
	Queue Enqueuer
}

func NewDeleteConversationUseCase(store repository.ConversationStore, q Enqueuer) *DeleteConversationUseCase {
	return &DeleteConversationUseCase{Store: store, Queue: q}
}

func (uc *DeleteConversationUseCase) Execute(ctx context.Context, in DeleteConversationInput) error {
	if in.RequesterID == "" || in.ConversationID == "" {
		return apperrors.InvalidInput("requester id and conversation id are required")
	}

	conv, err := uc.Store.Get(ctx, in.ConversationID)
	if err != nil {
		return storeErr(err)
	}
	isMember, err := uc.Store.IsMember(ctx, in.ConversationID, in.RequesterID)
	if err != nil {
		return storeErr(err)
	}
	if !isMember {
		return apperrors.ErrNotAMember
	}
	if conv.Kind == chat.KindGroup && (conv.CreatedBy == nil || *conv.CreatedBy != in.RequesterID) {
		return apperrors.Forbidden("only the group creator can delete it")
	}

	if err := uc.Queue.EnqueueDelete(ctx, in.ConversationID); err != nil {
		return apperrors.Wrap(apperrors.CodeUnavailable, "could not schedule deletion", err)
	}
	return nil
}
