package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"crm-chat/internal/infrastructure/queue/port"
)

// ===================== Client =====================

// AsynqClient implements port.Client using github.com/hibiken/asynq
// and Redis as the backing store.
type AsynqClient struct {
	client *asynq.Client
}

// NewAsynqClient constructs a client from a Redis URL.
func NewAsynqClient(redisURL string) (*AsynqClient, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: empty Redis URL")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return &AsynqClient{client: asynq.NewClient(opt)}, nil
}

// Ensure interface is satisfied
var _ port.Client = (*AsynqClient)(nil)

func (a *AsynqClient) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("asynq: task type is required")
	}
	at := asynq.NewTask(t.Type, t.Payload)
	var asynqOpts []asynq.Option
	if len(opts) > 0 {
		// One consolidated option per call keeps the port minimal.
		op := opts[0]
		if !op.ProcessAt.IsZero() {
			asynqOpts = append(asynqOpts, asynq.ProcessAt(op.ProcessAt))
		} else if op.ProcessIn > 0 {
			asynqOpts = append(asynqOpts, asynq.ProcessIn(op.ProcessIn))
		}
		if op.Queue != "" {
			asynqOpts = append(asynqOpts, asynq.Queue(op.Queue))
		}
		if op.MaxRetry > 0 {
			asynqOpts = append(asynqOpts, asynq.MaxRetry(op.MaxRetry))
		}
		if op.UniqueTTL > 0 {
			asynqOpts = append(asynqOpts, asynq.Unique(op.UniqueTTL))
		}
		if !op.Deadline.IsZero() {
			asynqOpts = append(asynqOpts, asynq.Deadline(op.Deadline))
		}
	}
	info, err := a.client.EnqueueContext(ctx, at, asynqOpts...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *AsynqClient) Close() error {
	return a.client.Close()
}

// ===================== Server =====================

// AsynqServer implements port.Server using github.com/hibiken/asynq
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewAsynqServer constructs a worker server consuming the default and chat
// queues with the given concurrency.
func NewAsynqServer(redisURL string, concurrency int, log zerolog.Logger) (*AsynqServer, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: empty Redis URL")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{"default": 1, "chat": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task_type", task.Type()).Msg("task failed")
		}),
	})
	return &AsynqServer{server: srv, mux: asynq.NewServeMux()}, nil
}

// Ensure interface is satisfied
var _ port.Server = (*AsynqServer)(nil)

func (s *AsynqServer) Register(taskType string, h port.Handler) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		pt := port.Task{Type: t.Type(), Payload: t.Payload()}
		return h(ctx, pt)
	})
}

// Run starts the server and blocks until the context is canceled, then gracefully shuts down.
func (s *AsynqServer) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}

// Stop gracefully shuts down the server.
func (s *AsynqServer) Stop(ctx context.Context) error {
	_ = ctx // Shutdown takes no context in the current asynq version
	s.server.Shutdown()
	return nil
}
