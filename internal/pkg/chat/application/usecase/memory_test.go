package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	chat "crm-chat/internal/pkg/chat/application/domain"
	"crm-chat/pkg/apperrors"
)

// memStore is an in-memory ConversationStore. It enforces the same direct
// conversation uniqueness the real store enforces with its partial unique
// index: the first committed creation for a pair wins and later creators are
// handed the winner.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	byID     map[string]chat.Conversation
	byDirect map[string]string          // direct key -> conversation id
	members  map[string]map[string]bool // conversation id -> user id -> member

	failIsMember error // when set, IsMember fails with this error
}

func newMemStore() *memStore {
	return &memStore{
		byID:     make(map[string]chat.Conversation),
		byDirect: make(map[string]string),
		members:  make(map[string]map[string]bool),
	}
}

func (s *memStore) newIDLocked() string {
	s.nextID++
	return fmt.Sprintf("conv-%d", s.nextID)
}

func (s *memStore) FindDirect(_ context.Context, a, b string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDirect[chat.DirectKey(a, b)]
	if !ok {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	return s.byID[id], nil
}

func (s *memStore) CreateDirect(_ context.Context, a, b string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := chat.DirectKey(a, b)
	if id, ok := s.byDirect[key]; ok {
		return s.byID[id], nil
	}

	conv := chat.Conversation{
		ID:        s.newIDLocked(),
		Kind:      chat.KindDirect,
		CreatedAt: time.Now(),
		DirectKey: &key,
	}
	s.byID[conv.ID] = conv
	s.byDirect[key] = conv.ID
	s.members[conv.ID] = map[string]bool{a: true, b: true}
	return conv, nil
}

func (s *memStore) CreateGroup(_ context.Context, creator string, memberIDs []string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := chat.Conversation{
		ID:        s.newIDLocked(),
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

func (s *memStore) IsMember(_ context.Context, conversationID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIsMember != nil {
		return false, s.failIsMember
	}
	return s.members[conversationID][userID], nil
}

func (s *memStore) Get(_ context.Context, conversationID string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[conversationID]
	if !ok {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	return conv, nil
}

func (s *memStore) ListFor(_ context.Context, userID string) ([]chat.ConversationPreview, error) {
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

func (s *memStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[conversationID]; !ok {
		return apperrors.ErrConversationNotFound
	}
	delete(s.byID, conversationID)
	delete(s.members, conversationID)
	return nil
}

func (s *memStore) memberCount(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members[conversationID])
}

// memLog is an in-memory MessageLog assigning monotonically increasing ids.
type memLog struct {
	mu     sync.Mutex
	nextID int64
	msgs   []chat.Message

	failAppend error
}

func newMemLog() *memLog { return &memLog{} }

func (l *memLog) Append(_ context.Context, m chat.Message) (chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAppend != nil {
		return chat.Message{}, l.failAppend
	}
	l.nextID++
	m.ID = l.nextID
	m.CreatedAt = time.Now()
	l.msgs = append(l.msgs, m)
	return m, nil
}

func (l *memLog) ListByConversation(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
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

func (l *memLog) LatestByConversation(_ context.Context, conversationID string) (chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.msgs) - 1; i >= 0; i-- {
		if l.msgs[i].ConversationID == conversationID {
			return l.msgs[i], nil
		}
	}
	return chat.Message{}, apperrors.ErrMessageNotFound
}

func (l *memLog) count(conversationID string) int {
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

// memBroadcaster records broadcast calls; observe, when set, runs inside each
// Broadcast so tests can assert on state at fan-out time.
type memBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
	rooms    []string
	observe  func()
}

func (b *memBroadcaster) Broadcast(conversationID string, payload []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.observe != nil {
		b.observe()
	}
	b.rooms = append(b.rooms, conversationID)
	b.payloads = append(b.payloads, append([]byte(nil), payload...))
	return len(b.payloads)
}

func (b *memBroadcaster) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payloads)
}

// memEnqueuer records scheduled deletions.
type memEnqueuer struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (e *memEnqueuer) EnqueueDelete(_ context.Context, conversationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.ids = append(e.ids, conversationID)
	return nil
}
