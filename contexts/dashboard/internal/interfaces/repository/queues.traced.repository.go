package repository

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

func NewTracedQueue(traceProvider trace.TracerProvider, name string, queue queues.Queue) *TracedQueue {
	return &TracedQueue{
		tracer: traceProvider.Tracer("queueboard.repository"),
		name:   name,
		queue:  queue,
	}
}

// TracedQueue records one span for every call to the queue.
type TracedQueue struct {
	tracer trace.Tracer
	name   string
	queue  queues.Queue
}

var _ queues.Queue = (*TracedQueue)(nil)

func (q *TracedQueue) JobCounts(ctx context.Context) (queues.JobCounts, error) {
	ctx, span := q.start(ctx, "JobCounts")
	defer span.End()

	counts, err := q.queue.JobCounts(ctx)
	recordErr(span, err)

	return counts, err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) Jobs(ctx context.Context, statuses []queues.Status, start int, end int) ([]queues.Job, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	ctx, span := q.start(ctx, "Jobs",
		attribute.StringSlice("statuses", names),
		attribute.String("range", strconv.Itoa(start)+"-"+strconv.Itoa(end)),
	)
	defer span.End()

	jobs, err := q.queue.Jobs(ctx, statuses, start, end)
	recordErr(span, err)
	span.SetAttributes(attribute.Int("jobs", len(jobs)))

	return jobs, err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) ServerInfo(ctx context.Context) (map[string]string, error) {
	ctx, span := q.start(ctx, "ServerInfo")
	defer span.End()

	info, err := q.queue.ServerInfo(ctx)
	recordErr(span, err)

	return info, err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) RetryJob(ctx context.Context, jobID string) error {
	ctx, span := q.start(ctx, "RetryJob", attribute.String("jobID", jobID))
	defer span.End()

	err := q.queue.RetryJob(ctx, jobID)
	recordErr(span, err)

	return err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) PromoteJob(ctx context.Context, jobID string) error {
	ctx, span := q.start(ctx, "PromoteJob", attribute.String("jobID", jobID))
	defer span.End()

	err := q.queue.PromoteJob(ctx, jobID)
	recordErr(span, err)

	return err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) RetryAll(ctx context.Context) error {
	ctx, span := q.start(ctx, "RetryAll")
	defer span.End()

	err := q.queue.RetryAll(ctx)
	recordErr(span, err)

	return err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) Clean(ctx context.Context, status queues.Status) error {
	ctx, span := q.start(ctx, "Clean", attribute.String("status", string(status)))
	defer span.End()

	err := q.queue.Clean(ctx, status)
	recordErr(span, err)

	return err //nolint:wrapcheck // this is decorator
}

func (q *TracedQueue) start(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) { //nolint:ireturn,lll // otel returns an interface
	attrs = append(attrs,
		attribute.String("method", method),
		attribute.String("queue", q.name),
	)

	return q.tracer.Start(ctx, "repo", trace.WithAttributes(attrs...))
}

func recordErr(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
}
