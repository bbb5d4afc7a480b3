package application_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/interfaces/repository"
)

var (
	ctx     = context.Background()
	errSome = errors.New("some-error")
)

// spyQueue counts the calls to ServerInfo.
type spyQueue struct {
	queues.Queue
	infoCalls atomic.Int32
}

func (q *spyQueue) ServerInfo(ctx context.Context) (map[string]string, error) {
	q.infoCalls.Add(1)

	return q.Queue.ServerInfo(ctx) //nolint:wrapcheck // spy
}

// unavailableQueue fails on every read.
type unavailableQueue struct {
	queues.Queue
}

func (q unavailableQueue) JobCounts(context.Context) (queues.JobCounts, error) {
	return nil, errSome
}

// newQueue returns a queue with n jobs of the given status, the job ids are prefixed with the status.
func newQueue(jobs map[queues.Status]int, info map[string]string) *repository.MemoryQueue {
	q := repository.NewMemoryQueue()
	if info != nil {
		q.SetInfo(info)
	}

	for status, n := range jobs {
		for i := range n {
			q.Add(status, queues.Job{ID: string(status) + "-" + strconv.Itoa(i)})
		}
	}

	return q
}
