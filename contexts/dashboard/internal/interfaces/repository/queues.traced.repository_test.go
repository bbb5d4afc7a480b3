package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/interfaces/repository"
)

func TestTracedQueue(t *testing.T) {
	t.Parallel()

	t.Run("span per call", func(t *testing.T) {
		t.Parallel()

		recorder := tracetest.NewSpanRecorder()
		q := repository.NewTracedQueue(
			sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
			"emails",
			repository.NewMemoryQueue(),
		)

		_, err := q.JobCounts(ctx)
		assert.NoError(t, err)

		_, err = q.Jobs(ctx, []queues.Status{queues.StatusFailed}, 0, 9)
		assert.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, "repo", spans[0].Name())
		assert.Contains(t, spans[0].Attributes(), attribute.String("method", "JobCounts"))
		assert.Contains(t, spans[0].Attributes(), attribute.String("queue", "emails"))
		assert.Contains(t, spans[1].Attributes(), attribute.String("range", "0-9"))
	})

	t.Run("record error", func(t *testing.T) {
		t.Parallel()

		recorder := tracetest.NewSpanRecorder()
		q := repository.NewTracedQueue(
			sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
			"emails",
			repository.NewMemoryQueue(),
		)

		err := q.RetryJob(ctx, "404")
		assert.ErrorIs(t, err, queues.ErrJobNotFound)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}
