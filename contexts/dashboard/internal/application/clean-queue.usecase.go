package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

var ErrCleanQueueFailed = errors.New("clean queue failed")

// NewCleanQueueCommandHandler removes all jobs of one status from a queue.
func NewCleanQueueCommandHandler(refs queues.Refs) app.Command[CleanQueueCommand] {
	return &cleanQueueCommandHandler{refs: refs}
}

type cleanQueueCommandHandler struct {
	refs queues.Refs
}

type CleanQueueCommand struct {
	Queue  string        `validate:"required"`
	Status queues.Status `validate:"oneof=failed delayed completed"`
}

func (h *cleanQueueCommandHandler) H(ctx context.Context, cmd CleanQueueCommand) error {
	queue, ok := h.refs.Find(cmd.Queue)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrCleanQueueFailed, ErrQueueNotFound, cmd.Queue)
	}

	if err := queue.Clean(ctx, cmd.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrCleanQueueFailed, err)
	}

	return nil
}
