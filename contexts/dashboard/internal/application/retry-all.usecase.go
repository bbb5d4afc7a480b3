package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

var ErrRetryAllFailed = errors.New("retry all failed")

func NewRetryAllCommandHandler(refs queues.Refs) app.Command[RetryAllCommand] {
	return &retryAllCommandHandler{refs: refs}
}

type retryAllCommandHandler struct {
	refs queues.Refs
}

type RetryAllCommand struct {
	Queue string `validate:"required"`
}

func (h *retryAllCommandHandler) H(ctx context.Context, cmd RetryAllCommand) error {
	queue, ok := h.refs.Find(cmd.Queue)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrRetryAllFailed, ErrQueueNotFound, cmd.Queue)
	}

	if err := queue.RetryAll(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRetryAllFailed, err)
	}

	return nil
}
