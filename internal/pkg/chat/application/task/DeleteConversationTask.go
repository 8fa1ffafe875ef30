package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	qport "crm-chat/internal/infrastructure/queue/port"
	repository "crm-chat/internal/pkg/chat/persistence/repository/port"
	"crm-chat/pkg/apperrors"
)

// DeleteConversationTaskType is the queue task name for the conversation
// deletion cascade.
const DeleteConversationTaskType = "chat:delete_conversation"

// DeleteConversationTaskPayload is the JSON payload transported via the queue.
type DeleteConversationTaskPayload struct {
	ConversationID string `json:"conversationId"`
}

// DeleteEnqueuer satisfies usecase.Enqueuer on top of the queue client.
type DeleteEnqueuer struct {
	Q qport.Client
}

func NewDeleteEnqueuer(q qport.Client) *DeleteEnqueuer {
	return &DeleteEnqueuer{Q: q}
}

func (e *DeleteEnqueuer) EnqueueDelete(ctx context.Context, conversationID string) error {
	b, err := json.Marshal(DeleteConversationTaskPayload{ConversationID: conversationID})
	if err != nil {
		return err
	}
	_, err = e.Q.Enqueue(ctx, qport.Task{Type: DeleteConversationTaskType, Payload: b},
		qport.EnqueueOption{Queue: "chat", MaxRetry: 10, UniqueTTL: time.Minute})
	return err
}

// RegisterDeleteConversationTask binds the cascade handler to the worker
// server. The handler is idempotent: a conversation already gone counts as
// done.
func RegisterDeleteConversationTask(srv qport.Server, store repository.ConversationStore, log zerolog.Logger) {
	srv.Register(DeleteConversationTaskType, func(ctx context.Context, t qport.Task) error {
		var p DeleteConversationTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		err := store.Delete(ctx, p.ConversationID)
		switch {
		case err == nil:
			log.Info().Str("conversation_id", p.ConversationID).Msg("conversation deleted")
			return nil
		case apperrors.CodeOf(err) == apperrors.CodeNotFound:
			return nil
		default:
			return err
		}
	})
}
