package repository_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/interfaces/repository"
)

var ctx = context.Background()

func TestMemoryQueue_JobCounts(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	q.Add(queues.StatusFailed, queues.Job{ID: "1"})
	q.Add(queues.StatusFailed, queues.Job{ID: "2"})
	q.Add(queues.StatusWaiting, queues.Job{ID: "3"})

	counts, err := q.JobCounts(ctx)
	assert.NoError(t, err)
	assert.Len(t, counts, 6)
	assert.Equal(t, int64(2), counts[queues.StatusFailed])
	assert.Equal(t, int64(1), counts[queues.StatusWaiting])
	assert.Equal(t, int64(0), counts[queues.StatusPaused])
}

func TestMemoryQueue_Jobs(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		q.Add(queues.StatusCompleted, queues.Job{ID: id})
	}

	q.Add(queues.StatusFailed, queues.Job{ID: "f1"})

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		jobs, err := q.Jobs(ctx, []queues.Status{queues.StatusCompleted}, 0, 1)
		assert.NoError(t, err)
		assert.Equal(t, []string{"5", "4"}, ids(jobs))
	})

	t.Run("end is inclusive and clamped", func(t *testing.T) {
		t.Parallel()

		jobs, err := q.Jobs(ctx, []queues.Status{queues.StatusCompleted}, 3, 10)
		assert.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, ids(jobs))
	})

	t.Run("every status gets the same window", func(t *testing.T) {
		t.Parallel()

		jobs, err := q.Jobs(ctx, []queues.Status{queues.StatusFailed, queues.StatusCompleted}, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, []string{"f1", "5"}, ids(jobs))
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()

		jobs, err := q.Jobs(ctx, []queues.Status{queues.StatusCompleted}, 10, 20)
		assert.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("negative indexes count from the end", func(t *testing.T) {
		t.Parallel()

		jobs, err := q.Jobs(ctx, []queues.Status{queues.StatusCompleted}, -2, -1)
		assert.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, ids(jobs))
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		_, err := q.Jobs(ctx, []queues.Status{"unknown"}, 0, 10)
		assert.ErrorIs(t, err, queues.ErrInvalidStatus)
	})
}

func TestMemoryQueue_RetryJob(t *testing.T) {
	t.Parallel()

	t.Run("retry failed job", func(t *testing.T) {
		t.Parallel()

		finished := int64(2)
		q := repository.NewMemoryQueue()
		q.Add(queues.StatusFailed, queues.Job{ID: "1", FailedReason: "boom", FinishedOn: &finished})

		err := q.RetryJob(ctx, "1")
		assert.NoError(t, err)

		jobs, _ := q.Jobs(ctx, []queues.Status{queues.StatusWaiting}, 0, -1)
		require.Len(t, jobs, 1)
		assert.Empty(t, jobs[0].FailedReason)
		assert.Nil(t, jobs[0].FinishedOn)

		counts, _ := q.JobCounts(ctx)
		assert.Equal(t, int64(0), counts[queues.StatusFailed])
	})

	t.Run("paused queue", func(t *testing.T) {
		t.Parallel()

		q := repository.NewMemoryQueue()
		q.Add(queues.StatusFailed, queues.Job{ID: "1"})
		q.Pause()

		err := q.RetryJob(ctx, "1")
		assert.NoError(t, err)

		counts, _ := q.JobCounts(ctx)
		assert.Equal(t, int64(1), counts[queues.StatusPaused])
	})

	t.Run("unknown job", func(t *testing.T) {
		t.Parallel()

		q := repository.NewMemoryQueue()

		err := q.RetryJob(ctx, "1")
		assert.ErrorIs(t, err, queues.ErrJobNotFound)
	})

	t.Run("job not failed", func(t *testing.T) {
		t.Parallel()

		q := repository.NewMemoryQueue()
		q.Add(queues.StatusActive, queues.Job{ID: "1"})

		err := q.RetryJob(ctx, "1")
		assert.ErrorIs(t, err, queues.ErrJobNotFound)
	})
}

func TestMemoryQueue_PromoteJob(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	q.Add(queues.StatusDelayed, queues.Job{ID: "1", Delay: 5000})
	q.Add(queues.StatusFailed, queues.Job{ID: "2"})

	err := q.PromoteJob(ctx, "1")
	assert.NoError(t, err)

	jobs, _ := q.Jobs(ctx, []queues.Status{queues.StatusWaiting}, 0, -1)
	require.Len(t, jobs, 1)
	assert.Zero(t, jobs[0].Delay)

	err = q.PromoteJob(ctx, "2")
	assert.ErrorIs(t, err, queues.ErrJobNotFound, "only delayed jobs can be promoted")
}

func TestMemoryQueue_RetryAll(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	q.Add(queues.StatusFailed, queues.Job{ID: "1"})
	q.Add(queues.StatusFailed, queues.Job{ID: "2"})
	q.Add(queues.StatusCompleted, queues.Job{ID: "3"})

	err := q.RetryAll(ctx)
	assert.NoError(t, err)

	counts, _ := q.JobCounts(ctx)
	assert.Equal(t, int64(0), counts[queues.StatusFailed])
	assert.Equal(t, int64(2), counts[queues.StatusWaiting])
	assert.Equal(t, int64(1), counts[queues.StatusCompleted])
}

func TestMemoryQueue_RetryAll_concurrentRetry(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	for i := range 100 {
		q.Add(queues.StatusFailed, queues.Job{ID: strconv.Itoa(i)})
	}

	g := errgroup.Group{}
	g.Go(func() error { return q.RetryAll(ctx) })
	g.Go(func() error {
		for i := range 100 {
			_ = q.RetryJob(ctx, strconv.Itoa(i))
		}

		return nil
	})

	assert.NoError(t, g.Wait())

	counts, _ := q.JobCounts(ctx)
	assert.Equal(t, int64(0), counts[queues.StatusFailed])
	assert.Equal(t, int64(100), counts[queues.StatusWaiting])
}

func TestMemoryQueue_Clean(t *testing.T) {
	t.Parallel()

	t.Run("clean status", func(t *testing.T) {
		t.Parallel()

		q := repository.NewMemoryQueue()
		q.Add(queues.StatusCompleted, queues.Job{ID: "1"})
		q.Add(queues.StatusCompleted, queues.Job{ID: "2"})
		q.Add(queues.StatusFailed, queues.Job{ID: "3"})

		err := q.Clean(ctx, queues.StatusCompleted)
		assert.NoError(t, err)

		counts, _ := q.JobCounts(ctx)
		assert.Equal(t, int64(0), counts[queues.StatusCompleted])
		assert.Equal(t, int64(1), counts[queues.StatusFailed])
	})

	t.Run("status can not be cleaned", func(t *testing.T) {
		t.Parallel()

		q := repository.NewMemoryQueue()

		err := q.Clean(ctx, queues.StatusActive)
		assert.ErrorIs(t, err, queues.ErrInvalidStatus)
	})
}

func TestMemoryQueue_ServerInfo(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	q.SetInfo(map[string]string{"redis_version": "7.2.4"})

	info, err := q.ServerInfo(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "7.2.4", info["redis_version"])
}

func TestMemoryQueue_Seed(t *testing.T) {
	t.Parallel()

	q := repository.NewMemoryQueue()
	q.Seed(gofakeit.New(42), 25)

	counts, err := q.JobCounts(ctx)
	assert.NoError(t, err)

	var total int64
	for _, c := range counts {
		total += c
	}

	assert.Equal(t, int64(25), total)

	jobs, err := q.Jobs(ctx, queues.Statuses(), 0, -1)
	assert.NoError(t, err)
	assert.Len(t, jobs, 25)
}

func ids(jobs []queues.Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}

	return ids
}
