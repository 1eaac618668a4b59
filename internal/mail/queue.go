package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/hr-manager/internal/tasks"
	"github.com/hugh/hr-manager/pkg/crypto"
	"github.com/hugh/hr-manager/pkg/queue"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender hands reset emails to the worker. The link is sealed before
// it is written to Redis.
type QueueSender struct {
	client    Enqueuer
	encryptor *crypto.Encryptor
}

func NewQueueSender(client Enqueuer, encryptor *crypto.Encryptor) *QueueSender {
	return &QueueSender{client: client, encryptor: encryptor}
}

func (s *QueueSender) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	sealed, err := s.encryptor.Seal(resetURL)
	if err != nil {
		return fmt.Errorf("sealing reset link: %w", err)
	}

	task, err := tasks.NewSendResetEmailTask(tasks.SendResetEmailPayload{
		To:        to,
		SealedURL: sealed,
	})
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	if _, err := s.client.EnqueueContext(ctx, task,
		asynq.TaskID("reset-mail:"+uuid.NewString()),
		asynq.Queue(queue.QueueCritical),
		asynq.MaxRetry(5),
	); err != nil {
		return fmt.Errorf("enqueueing reset email: %w", err)
	}
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*QueueSender)(nil)
)
