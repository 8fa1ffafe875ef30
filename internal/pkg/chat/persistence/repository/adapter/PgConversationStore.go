package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "crm-chat/internal/pkg/chat/application/domain"
	"crm-chat/pkg/apperrors"
)

const uniqueViolation = "23505"

// PgConversationStore persists conversations and membership.
//
// Tables: conversations(id, kind, created_by, created_at, direct_key),
// conversation_members(conversation_id, user_id). direct_key carries a
// partial unique index for kind = 'direct'.
type PgConversationStore struct {
	pool *pgxpool.Pool
}

func NewPgConversationStore(pool *pgxpool.Pool) *PgConversationStore {
	return &PgConversationStore{pool: pool}
}

func (r *PgConversationStore) FindDirect(ctx context.Context, a, b string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgConversationStore: nil pool")
	}
	return r.findDirect(ctx, r.pool, a, b)
}

// findDirect runs against either the pool or an open transaction.
func (r *PgConversationStore) findDirect(ctx context.Context, q querier, a, b string) (chat.Conversation, error) {
	var c chat.Conversation
	err := q.QueryRow(ctx, `
		SELECT id::text, kind, created_by::text, created_at, direct_key
		FROM conversations
		WHERE kind = 'direct' AND direct_key = $1
	`, chat.DirectKey(a, b)).Scan(&c.ID, &c.Kind, &c.CreatedBy, &c.CreatedAt, &c.DirectKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

// CreateDirect re-checks for an existing conversation, then inserts the
// conversation and both membership rows inside one transaction. Losing the
// check-then-insert race surfaces as a unique violation on direct_key; the
// transaction is rolled back and the committed winner is looked up once more
// and returned, so concurrent creators converge on a single id.
func (r *PgConversationStore) CreateDirect(ctx context.Context, a, b string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgConversationStore: nil pool")
	}

	conv, err := r.createDirectTx(ctx, a, b)
	if err == nil {
		return conv, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		// A concurrent writer committed first; the second read is consistent
		// with the winner, so one retry is enough.
		return r.FindDirect(ctx, a, b)
	}
	return chat.Conversation{}, err
}

func (r *PgConversationStore) createDirectTx(ctx context.Context, a, b string) (chat.Conversation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Conversation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if existing, err := r.findDirect(ctx, tx, a, b); err == nil {
		return existing, tx.Commit(ctx)
	} else if !errors.Is(err, apperrors.ErrConversationNotFound) {
		return chat.Conversation{}, err
	}

	key := chat.DirectKey(a, b)
	c := chat.Conversation{Kind: chat.KindDirect, DirectKey: &key}
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (kind, created_at, direct_key)
		VALUES ('direct', now(), $1)
		RETURNING id::text, created_at
	`, key).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return chat.Conversation{}, err
	}

	for _, uid := range []string{a, b} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_members (conversation_id, user_id)
			VALUES ($1::uuid, $2::uuid)
		`, c.ID, uid); err != nil {
			return chat.Conversation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

// CreateGroup inserts the conversation row plus one membership row per
// member. Callers pass memberIDs already deduplicated and including the
// creator.
func (r *PgConversationStore) CreateGroup(ctx context.Context, creator string, memberIDs []string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgConversationStore: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Conversation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c := chat.Conversation{Kind: chat.KindGroup, CreatedBy: &creator}
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (kind, created_by, created_at)
		VALUES ('group', $1::uuid, now())
		RETURNING id::text, created_at
	`, creator).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return chat.Conversation{}, err
	}

	for _, uid := range memberIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_members (conversation_id, user_id)
			VALUES ($1::uuid, $2::uuid)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, c.ID, uid); err != nil {
			return chat.Conversation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PgConversationStore) IsMember(ctx context.Context, conversationID, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgConversationStore: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_members
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgConversationStore) Get(ctx context.Context, conversationID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgConversationStore: nil pool")
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, kind, created_by::text, created_at, direct_key
		FROM conversations
		WHERE id = $1::uuid
	`, conversationID).Scan(&c.ID, &c.Kind, &c.CreatedBy, &c.CreatedAt, &c.DirectKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

// ListFor joins membership with the latest message per conversation and, for
// direct conversations, the other participant's summary. Ordering puts the
// most recently active conversation first and message-less ones last.
func (r *PgConversationStore) ListFor(ctx context.Context, userID string) ([]chat.ConversationPreview, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationStore: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.kind, c.created_by::text, c.created_at, c.direct_key,
		       u.id::text, u.display_name, u.avatar_ref,
		       lm.id, lm.sender_id::text, lm.content, lm.created_at
		FROM conversations c
		JOIN conversation_members me
		  ON me.conversation_id = c.id AND me.user_id = $1::uuid
		LEFT JOIN conversation_members other
		  ON other.conversation_id = c.id AND other.user_id <> me.user_id AND c.kind = 'direct'
		LEFT JOIN users u ON u.id = other.user_id
		LEFT JOIN LATERAL (
			SELECT m.id, m.sender_id, m.content, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON true
		ORDER BY lm.created_at DESC NULLS LAST, c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []chat.ConversationPreview
	for rows.Next() {
		var (
			p         chat.ConversationPreview
			otherID   *string
			otherName *string
			avatar    *string
			msgID     *int64
			senderID  *string
			content   *string
			createdAt *time.Time
		)
		if err := rows.Scan(
			&p.Conversation.ID, &p.Conversation.Kind, &p.Conversation.CreatedBy,
			&p.Conversation.CreatedAt, &p.Conversation.DirectKey,
			&otherID, &otherName, &avatar,
			&msgID, &senderID, &content, &createdAt,
		); err != nil {
			return nil, err
		}
		if otherID != nil && otherName != nil {
			p.Other = &chat.UserSummary{ID: *otherID, DisplayName: *otherName, AvatarRef: avatar}
		}
		if msgID != nil {
			p.LatestMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: p.Conversation.ID,
				SenderID:       *senderID,
				Content:        *content,
				CreatedAt:      *createdAt,
			}
		}
		previews = append(previews, p)
	}
	return previews, rows.Err()
}

// Delete cascades messages, then memberships, then the conversation row, in
// that order to respect foreign keys.
func (r *PgConversationStore) Delete(ctx context.Context, conversationID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgConversationStore: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1::uuid`, conversationID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM conversation_members WHERE conversation_id = $1::uuid`, conversationID); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM conversations WHERE id = $1::uuid`, conversationID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return tx.Commit(ctx)
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
