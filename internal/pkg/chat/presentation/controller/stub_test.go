package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	chat "crm-chat/internal/pkg/chat/application/domain"
	"crm-chat/pkg/apperrors"
)

// stubStore backs controller tests with an in-memory conversation store.
type stubStore struct {
	mu       sync.Mutex
	nextID   int
	byID     map[string]chat.Conversation
	byDirect map[string]string
	members  map[string]map[string]bool
}

func newStubStore() *stubStore {
	return &stubStore{
		byID:     make(map[string]chat.Conversation),
		byDirect: make(map[string]string),
		members:  make(map[string]map[string]bool),
	}
}

func (s *stubStore) FindDirect(_ context.Context, a, b string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDirect[chat.DirectKey(a, b)]
	if !ok {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	return s.byID[id], nil
}

func (s *stubStore) CreateDirect(_ context.Context, a, b string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chat.DirectKey(a, b)
	if id, ok := s.byDirect[key]; ok {
		return s.byID[id], nil
	}
	s.nextID++
	conv := chat.Conversation{
		ID:        fmt.Sprintf("conv-%d", s.nextID),
		Kind:      chat.KindDirect,
		CreatedAt: time.Now(),
		DirectKey: &key,
	}
	s.byID[conv.ID] = conv
	s.byDirect[key] = conv.ID
	s.members[conv.ID] = map[string]bool{a: true, b: true}
	return conv, nil
}

func (s *stubStore) CreateGroup(_ context.Context, creator string, memberIDs []string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	conv := chat.Conversation{
		ID:        fmt.Sprintf("conv-%d", s.nextID),
		Kind:      chat.KindGroup,
		CreatedBy: &creator,
		CreatedAt: time.Now(),
	}
	s.byID[conv.ID] = conv
	set := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		set[id] = true
	}
	s.members[conv.ID] = set
	return conv, nil
}

func (s *stubStore) IsMember(_ context.Context, conversationID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[conversationID][userID], nil
}

func (s *stubStore) Get(_ context.Context, conversationID string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[conversationID]
	if !ok {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	return conv, nil
}

func (s *stubStore) ListFor(_ context.Context, userID string) ([]chat.ConversationPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var previews []chat.ConversationPreview
	for id, set := range s.members {
		if set[userID] {
			previews = append(previews, chat.ConversationPreview{Conversation: s.byID[id]})
		}
	}
	return previews, nil
}

func (s *stubStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[conversationID]; !ok {
		return apperrors.ErrConversationNotFound
	}
	delete(s.byID, conversationID)
	delete(s.members, conversationID)
	return nil
}

// stubLog is an in-memory message log.
type stubLog struct {
	mu     sync.Mutex
	nextID int64
	msgs   []chat.Message
}

func newStubLog() *stubLog { return &stubLog{} }

func (l *stubLog) Append(_ context.Context, m chat.Message) (chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	m.ID = l.nextID
	m.CreatedAt = time.Now()
	l.msgs = append(l.msgs, m)
	return m, nil
}

func (l *stubLog) ListByConversation(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var all []chat.Message
	for _, m := range l.msgs {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (l *stubLog) LatestByConversation(_ context.Context, conversationID string) (chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.msgs) - 1; i >= 0; i-- {
		if l.msgs[i].ConversationID == conversationID {
			return l.msgs[i], nil
		}
	}
	return chat.Message{}, apperrors.ErrMessageNotFound
}

func (l *stubLog) count(conversationID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.msgs {
		if m.ConversationID == conversationID {
			n++
		}
	}
	return n
}
