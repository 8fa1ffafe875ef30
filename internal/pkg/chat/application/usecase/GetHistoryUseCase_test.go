package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"crm-chat/pkg/apperrors"
)

func TestGetHistory_ReturnsMessagesInOrder(t *testing.T) {
	store := newMemStore()
	log := newMemLog()
	send := NewSendMessageUseCase(store, log, nil)
	uc := NewGetHistoryUseCase(store, log)

	convID := directChat(t, store, "alice", "bob")
	for i := 0; i < 5; i++ {
		_, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID,
			SenderID:       "alice",
			Content:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	msgs, err := uc.Execute(context.Background(), GetHistoryInput{RequesterID: "bob", ConversationID: convID})
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i := 1; i < len(msgs); i++ {
		require.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}

	// Reading is idempotent: a second read observes the identical sequence.
	again, err := uc.Execute(context.Background(), GetHistoryInput{RequesterID: "bob", ConversationID: convID})
	require.NoError(t, err)
	require.Equal(t, msgs, again)
}

func TestGetHistory_Pagination(t *testing.T) {
	store := newMemStore()
	log := newMemLog()
	send := NewSendMessageUseCase(store, log, nil)
	uc := NewGetHistoryUseCase(store, log)

	convID := directChat(t, store, "alice", "bob")
	for i := 0; i < 10; i++ {
		_, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID,
			SenderID:       "bob",
			Content:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	page, err := uc.Execute(context.Background(), GetHistoryInput{
		RequesterID:    "alice",
		ConversationID: convID,
		Limit:          3,
		Offset:         4,
	})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, "message 4", page[0].Content)
	require.Equal(t, "message 6", page[2].Content)
}

func TestGetHistory_NonMemberForbidden(t *testing.T) {
	store := newMemStore()
	uc := NewGetHistoryUseCase(store, newMemLog())

	convID := directChat(t, store, "alice", "bob")

	_, err := uc.Execute(context.Background(), GetHistoryInput{RequesterID: "mallory", ConversationID: convID})
	require.ErrorIs(t, err, apperrors.ErrNotAMember)
}

func TestMessageLog_LatestByConversation(t *testing.T) {
	store := newMemStore()
	log := newMemLog()
	send := NewSendMessageUseCase(store, log, nil)

	convID := directChat(t, store, "alice", "bob")

	// A conversation with no messages has no latest message.
	_, err := log.LatestByConversation(context.Background(), convID)
	require.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	for _, content := range []string{"first", "second"} {
		_, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID,
			SenderID:       "alice",
			Content:        content,
		})
		require.NoError(t, err)
	}

	latest, err := log.LatestByConversation(context.Background(), convID)
	require.NoError(t, err)
	require.Equal(t, "second", latest.Content)
	require.Equal(t, int64(2), latest.ID)
}

func TestJoinConversation_MembershipGate(t *testing.T) {
	store := newMemStore()
	uc := NewJoinConversationUseCase(store)

	convID := directChat(t, store, "alice", "bob")

	require.NoError(t, uc.Execute(context.Background(), JoinConversationInput{ConversationID: convID, UserID: "alice"}))

	err := uc.Execute(context.Background(), JoinConversationInput{ConversationID: convID, UserID: "mallory"})
	require.ErrorIs(t, err, apperrors.ErrNotAMember)
}

func TestListConversations_OnlyOwn(t *testing.T) {
	store := newMemStore()
	uc := NewListConversationsUseCase(store)

	directChat(t, store, "alice", "bob")
	directChat(t, store, "bob", "carol")

	previews, err := uc.Execute(context.Background(), ListConversationsInput{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, previews, 1)

	previews, err = uc.Execute(context.Background(), ListConversationsInput{UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, previews, 2)
}
