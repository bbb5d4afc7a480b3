package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

// NewMemoryQueue is an in memory implementation of the Queue.
// No Jobs are persisted! Recommended use for local development, demos and tests only.
func NewMemoryQueue() *MemoryQueue {
	ids := make(map[queues.Status][]string, len(queues.Statuses()))
	for _, status := range queues.Statuses() {
		ids[status] = []string{}
	}

	return &MemoryQueue{
		mu:   sync.Mutex{},
		ids:  ids,
		jobs: map[string]queues.Job{},
		info: map[string]string{
			"redis_version":     "in-memory",
			"connected_clients": "1",
			"blocked_clients":   "0",
		},
	}
}

type MemoryQueue struct { //nolint:govet // alignment less important than grouping of mutex
	mu sync.Mutex
	// ids holds the job ids per status, newest first.
	ids    map[queues.Status][]string
	jobs   map[string]queues.Job
	info   map[string]string
	paused bool
}

var _ queues.Queue = (*MemoryQueue)(nil)

// Add puts job as the newest job of the given status.
func (q *MemoryQueue) Add(status queues.Status, job queues.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs[job.ID] = job
	q.ids[status] = append([]string{job.ID}, q.ids[status]...)
}

// SetInfo replaces the server info returned by ServerInfo.
func (q *MemoryQueue) SetInfo(info map[string]string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.info = maps.Clone(info)
}

// Pause makes retried and promoted jobs go to paused instead of waiting.
func (q *MemoryQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.paused = true
}

func (q *MemoryQueue) JobCounts(_ context.Context) (queues.JobCounts, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := queues.NewJobCounts()
	for status, ids := range q.ids {
		counts[status] = int64(len(ids))
	}

	return counts, nil
}

func (q *MemoryQueue) Jobs(_ context.Context, statuses []queues.Status, start int, end int) ([]queues.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := []queues.Job{}

	for _, status := range statuses {
		ids, ok := q.ids[status]
		if !ok {
			return nil, fmt.Errorf("%w: %q", queues.ErrInvalidStatus, status)
		}

		from, to, ok := indexRange(len(ids), start, end)
		if !ok {
			continue
		}

		for _, id := range ids[from : to+1] {
			jobs = append(jobs, q.jobs[id])
		}
	}

	return jobs, nil
}

func (q *MemoryQueue) ServerInfo(_ context.Context) (map[string]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return maps.Clone(q.info), nil
}

func (q *MemoryQueue) RetryJob(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.move(jobID, queues.StatusFailed)
	if err != nil {
		return err
	}

	job.FinishedOn = nil
	job.ProcessedOn = nil
	job.FailedReason = ""
	q.jobs[jobID] = job

	return nil
}

func (q *MemoryQueue) PromoteJob(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.move(jobID, queues.StatusDelayed)
	if err != nil {
		return err
	}

	job.Delay = 0
	q.jobs[jobID] = job

	return nil
}

func (q *MemoryQueue) RetryAll(ctx context.Context) error {
	q.mu.Lock()
	failed := slices.Clone(q.ids[queues.StatusFailed])
	q.mu.Unlock()

	return q.retryJobs(ctx, failed)
}

func (q *MemoryQueue) retryJobs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		err := q.RetryJob(ctx, id)
		if err != nil && !errors.Is(err, queues.ErrJobNotFound) { // retried or removed by someone else
			return err
		}
	}

	return nil
}

func (q *MemoryQueue) Clean(_ context.Context, status queues.Status) error {
	if !status.Cleanable() {
		return fmt.Errorf("%w: can not clean %s jobs", queues.ErrInvalidStatus, status)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range q.ids[status] {
		delete(q.jobs, id)
	}

	q.ids[status] = []string{}

	return nil
}

// move puts the job from status to waiting, or paused if the queue is paused.
func (q *MemoryQueue) move(jobID string, from queues.Status) (queues.Job, error) {
	job, exists := q.jobs[jobID]
	if !exists {
		return queues.Job{}, fmt.Errorf("%w: %s", queues.ErrJobNotFound, jobID)
	}

	i := slices.Index(q.ids[from], jobID)
	if i < 0 {
		return queues.Job{}, fmt.Errorf("%w: %s is not %s", queues.ErrJobNotFound, jobID, from)
	}

	q.ids[from] = slices.Delete(q.ids[from], i, i+1)

	target := queues.StatusWaiting
	if q.paused {
		target = queues.StatusPaused
	}

	q.ids[target] = append([]string{jobID}, q.ids[target]...)

	return job, nil
}

// indexRange resolves start and end the way redis does for LRANGE,
// including negative indexes counting from the end.
func indexRange(length int, start int, end int) (int, int, bool) {
	if start < 0 {
		start = max(length+start, 0)
	}

	if end < 0 {
		end = length + end
	}

	if end >= length {
		end = length - 1
	}

	if start > end || start >= length {
		return 0, 0, false
	}

	return start, end, true
}

// Seed fills the queue with n random jobs in all statuses, e.g. for a demo.
func (q *MemoryQueue) Seed(faker *gofakeit.Faker, n int) {
	now := time.Now()

	for i := range n {
		status := queues.Statuses()[faker.IntRange(0, len(queues.Statuses())-1)]
		created := now.Add(-time.Duration(n-i) * time.Minute).UnixMilli()

		data, _ := json.Marshal(map[string]any{ //nolint:errchkjson // map of strings
			"email":   faker.Email(),
			"subject": faker.Sentence(5), //nolint:mnd
		})

		job := queues.Job{
			ID:         strconv.Itoa(i + 1),
			Timestamp:  created,
			Progress:   json.RawMessage("0"),
			Stacktrace: []string{},
			Opts:       json.RawMessage(`{"attempts":3}`),
			Data:       data,
		}

		switch status { //nolint:exhaustive // other statuses have no additional data
		case queues.StatusActive:
			processedOn := created + 1000
			job.ProcessedOn = &processedOn
			job.Progress = json.RawMessage(strconv.Itoa(faker.IntRange(0, 100))) //nolint:mnd
		case queues.StatusCompleted:
			processedOn, finishedOn := created+1000, created+2000
			job.ProcessedOn, job.FinishedOn = &processedOn, &finishedOn
			job.AttemptsMade = 1
			job.Progress = json.RawMessage("100")
		case queues.StatusFailed:
			processedOn, finishedOn := created+1000, created+2000
			job.ProcessedOn, job.FinishedOn = &processedOn, &finishedOn
			job.AttemptsMade = 3
			job.FailedReason = faker.Error().Error()
			job.Stacktrace = []string{"Error: " + job.FailedReason + "\n    at process (worker.js:42:13)"}
		case queues.StatusDelayed:
			job.Delay = int64(faker.IntRange(1000, 60000)) //nolint:mnd
		}

		q.Add(status, job)
	}
}
