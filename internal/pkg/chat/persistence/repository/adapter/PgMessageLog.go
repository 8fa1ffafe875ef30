package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "crm-chat/internal/pkg/chat/application/domain"
	"crm-chat/pkg/apperrors"
)

const defaultPageSize = 50

// PgMessageLog is the append-only message store. Table: messages(id bigserial,
// conversation_id, sender_id, content, created_at). ids grow monotonically,
// so (created_at, id) is a total order within a conversation.
type PgMessageLog struct {
	pool *pgxpool.Pool
}

func NewPgMessageLog(pool *pgxpool.Pool) *PgMessageLog {
	return &PgMessageLog{pool: pool}
}

func (r *PgMessageLog) Append(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgMessageLog: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, created_at)
		VALUES ($1::uuid, $2::uuid, $3, now())
		RETURNING id, created_at
	`, m.ConversationID, m.SenderID, m.Content).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgMessageLog) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageLog: nil pool")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id::text, sender_id::text, content, created_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageLog) LatestByConversation(ctx context.Context, conversationID string) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgMessageLog: nil pool")
	}
	var m chat.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id, conversation_id::text, sender_id::text, content, created_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, conversationID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}
