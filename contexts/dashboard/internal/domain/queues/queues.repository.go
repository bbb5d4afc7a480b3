package queues

import (
	"context"
)

// Queue is the access to one named queue of the queue engine.
type Queue interface {
	// JobCounts returns the number of jobs for every Status.
	JobCounts(ctx context.Context) (JobCounts, error)
	// Jobs returns the jobs of each status between start and end (inclusive), newest first.
	// The jobs of the statuses are concatenated in the given order.
	Jobs(ctx context.Context, statuses []Status, start int, end int) ([]Job, error)
	// ServerInfo refreshes and returns the info of the server backing the queue.
	ServerInfo(ctx context.Context) (map[string]string, error)

	RetryJob(ctx context.Context, jobID string) error
	PromoteJob(ctx context.Context, jobID string) error
	RetryAll(ctx context.Context) error
	Clean(ctx context.Context, status Status) error
}

// Ref is a named Queue.
type Ref struct {
	Name  string
	Queue Queue
}

// Refs are all queues shown on the dashboard, in the configured order.
type Refs []Ref

// Find returns the Queue with the given name.
func (refs Refs) Find(name string) (Queue, bool) { //nolint:ireturn // port of the queue engine
	for _, ref := range refs {
		if ref.Name == name {
			return ref.Queue, true
		}
	}

	return nil, false
}
