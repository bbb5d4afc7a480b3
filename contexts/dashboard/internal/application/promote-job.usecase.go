package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

var ErrPromoteJobFailed = errors.New("promote job failed")

// NewPromoteJobCommandHandler moves a delayed job to the front of the queue, so it is processed next.
func NewPromoteJobCommandHandler(refs queues.Refs) app.Command[PromoteJobCommand] {
	return &promoteJobCommandHandler{refs: refs}
}

type promoteJobCommandHandler struct {
	refs queues.Refs
}

type PromoteJobCommand struct {
	Queue string `validate:"required"`
	JobID string `validate:"required"`
}

func (h *promoteJobCommandHandler) H(ctx context.Context, cmd PromoteJobCommand) error {
	queue, ok := h.refs.Find(cmd.Queue)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrPromoteJobFailed, ErrQueueNotFound, cmd.Queue)
	}

	if err := queue.PromoteJob(ctx, cmd.JobID); err != nil {
		return fmt.Errorf("%w: %w", ErrPromoteJobFailed, err)
	}

	return nil
}
