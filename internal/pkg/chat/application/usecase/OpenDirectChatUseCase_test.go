package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	chat "crm-chat/internal/pkg/chat/application/domain"
	"crm-chat/pkg/apperrors"
)

func TestOpenDirectChat_CreatesOnce(t *testing.T) {
	store := newMemStore()
	uc := NewOpenDirectChatUseCase(store)

	first, err := uc.Execute(context.Background(), OpenDirectChatInput{RequesterID: "alice", OtherID: "bob"})
	require.NoError(t, err)
	require.Equal(t, chat.KindDirect, first.Kind)
	require.NotNil(t, first.DirectKey)
	require.Equal(t, "alice:bob", *first.DirectKey)

	// Opening again, from either side, resolves to the same conversation.
	again, err := uc.Execute(context.Background(), OpenDirectChatInput{RequesterID: "bob", OtherID: "alice"})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, 2, store.memberCount(first.ID))
}

func TestOpenDirectChat_RejectsSelf(t *testing.T) {
	uc := NewOpenDirectChatUseCase(newMemStore())

	_, err := uc.Execute(context.Background(), OpenDirectChatInput{RequesterID: "alice", OtherID: "alice"})
	require.ErrorIs(t, err, apperrors.ErrSelfChat)
}

func TestOpenDirectChat_RejectsMissingIDs(t *testing.T) {
	uc := NewOpenDirectChatUseCase(newMemStore())

	_, err := uc.Execute(context.Background(), OpenDirectChatInput{RequesterID: "alice"})
	require.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

// Concurrent openers for the same pair must all converge on one conversation
// with exactly two membership rows, no matter who wins the race.
func TestOpenDirectChat_ConcurrentRequestsConverge(t *testing.T) {
	store := newMemStore()
	uc := NewOpenDirectChatUseCase(store)

	const racers = 32
	ids := make([]string, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := OpenDirectChatInput{RequesterID: "alice", OtherID: "bob"}
			if i%2 == 1 {
				in = OpenDirectChatInput{RequesterID: "bob", OtherID: "alice"}
			}
			conv, err := uc.Execute(context.Background(), in)
			require.NoError(t, err)
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	require.Equal(t, 2, store.memberCount(ids[0]))
}
