package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

var ErrRetryJobFailed = errors.New("retry job failed")

func NewRetryJobCommandHandler(refs queues.Refs) app.Command[RetryJobCommand] {
	return &retryJobCommandHandler{refs: refs}
}

type retryJobCommandHandler struct {
	refs queues.Refs
}

type RetryJobCommand struct {
	Queue string `validate:"required"`
	JobID string `validate:"required"`
}

func (h *retryJobCommandHandler) H(ctx context.Context, cmd RetryJobCommand) error {
	queue, ok := h.refs.Find(cmd.Queue)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrRetryJobFailed, ErrQueueNotFound, cmd.Queue)
	}

	if err := queue.RetryJob(ctx, cmd.JobID); err != nil {
		return fmt.Errorf("%w: %w", ErrRetryJobFailed, err)
	}

	return nil
}
