package usecase

import (
	"context"

	"github.com/samber/lo"

	chat "crm-chat/internal/pkg/chat/application/domain"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// OpenGroupChatInput carries the creator and the invited member ids.
type OpenGroupChatInput struct {
	CreatorID string
	MemberIDs []string
}

// OpenGroupChatUseCase creates a group conversation. Duplicate ids and the
// creator are folded out of the invite list before validation, so inviting
// the creator again never changes the member set.
type OpenGroupChatUseCase struct {
	Store repository.ConversationStore
}

func NewOpenGroupChatUseCase(store repository.ConversationStore) *OpenGroupChatUseCase {
	return &OpenGroupChatUseCase{Store: store}
}

func (uc *OpenGroupChatUseCase) Execute(ctx context.Context, in OpenGroupChatInput) (chat.Conversation, error) {
	if in.CreatorID == "" {
		return chat.Conversation{}, apperrors.InvalidInput("creator id is required")
	}

	invited := lo.Uniq(lo.Filter(in.MemberIDs, func(id string, _ int) bool {
		return id != "" && id != in.CreatorID
	}))
	if len(invited) == 0 {
		return chat.Conversation{}, apperrors.ErrEmptyGroup
	}

	members := append([]string{in.CreatorID}, invited...)
	conv, err := uc.Store.CreateGroup(ctx, in.CreatorID, members)
	if err != nil {
		return chat.Conversation{}, storeErr(err)
	}
	return conv, nil
}
