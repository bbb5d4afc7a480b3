package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/queueboard/alog"
	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

var ErrGetQueuesFailed = errors.New("get queues failed")

func NewGetQueuesQueryHandler(logger alog.Logger, refs queues.Refs) app.Query[GetQueuesQuery, GetQueuesResponse] {
	return &getQueuesQueryHandler{logger: logger, refs: refs}
}

type getQueuesQueryHandler struct {
	logger alog.Logger
	refs   queues.Refs
}

type (
	// GetQueuesQuery holds the query parameters of the dashboard:
	// a status filter keyed by queue name, plus start and end of the page.
	GetQueuesQuery struct {
		Params map[string][]string
	}
	GetQueuesResponse struct {
		Stats  map[string]string `json:"stats"`
		Queues []QueueView       `json:"queues"`
	}

	QueueView struct {
		Name   string           `json:"name"`
		Counts queues.JobCounts `json:"counts"`
		Jobs   []JobView        `json:"jobs"`
	}

	JobView struct {
		ID           string          `json:"id"`
		Timestamp    int64           `json:"timestamp"`
		ProcessedOn  *int64          `json:"processedOn,omitempty"`
		FinishedOn   *int64          `json:"finishedOn,omitempty"`
		Progress     json.RawMessage `json:"progress"`
		Attempts     int64           `json:"attempts"`
		Delay        int64           `json:"delay"`
		FailedReason string          `json:"failedReason,omitempty"`
		Stacktrace   []string        `json:"stacktrace"`
		Opts         json.RawMessage `json:"opts"`
		Data         json.RawMessage `json:"data"`
	}
)

func (h *getQueuesQueryHandler) H(ctx context.Context, query GetQueuesQuery) (GetQueuesResponse, error) {
	if len(h.refs) == 0 {
		return GetQueuesResponse{Stats: map[string]string{}, Queues: []QueueView{}}, nil
	}

	h.logger.DebugContext(ctx, "query", slog.Any("params", query.Params))

	page := queues.NewPagination(
		queues.ParseBound(first(query.Params, "start")),
		queues.ParseBound(first(query.Params, "end")),
	)

	views := make([]QueueView, len(h.refs))
	g, gctx := errgroup.WithContext(ctx)

	for i, ref := range h.refs {
		g.Go(func() error {
			view, err := queueView(gctx, ref, resolveStatuses(query.Params[ref.Name]), page)
			if err != nil {
				return fmt.Errorf("queue %s: %w", ref.Name, err)
			}

			views[i] = view

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return GetQueuesResponse{}, fmt.Errorf("%w: %w", ErrGetQueuesFailed, err)
	}

	info, err := h.refs[0].Queue.ServerInfo(ctx)
	if err != nil {
		return GetQueuesResponse{}, fmt.Errorf("%w: %w", ErrGetQueuesFailed, err)
	}

	return GetQueuesResponse{
		Stats:  queues.ServerStats(info),
		Queues: views,
	}, nil
}

func queueView(ctx context.Context, ref queues.Ref, statuses []queues.Status, page queues.Pagination) (QueueView, error) {
	counts, err := ref.Queue.JobCounts(ctx)
	if err != nil {
		return QueueView{}, err //nolint:wrapcheck // wrapped by the caller
	}

	view := QueueView{Name: ref.Name, Counts: counts, Jobs: []JobView{}}
	if len(statuses) == 0 {
		return view, nil
	}

	jobs, err := ref.Queue.Jobs(ctx, statuses, page.Start, page.End)
	if err != nil {
		return QueueView{}, err //nolint:wrapcheck // wrapped by the caller
	}

	for _, job := range jobs {
		view.Jobs = append(view.Jobs, jobView(job))
	}

	return view, nil
}

// resolveStatuses expands Latest to all statuses and passes any other value on verbatim.
// Unknown statuses are rejected by the queue.
func resolveStatuses(values []string) []queues.Status {
	statuses := []queues.Status{}

	for _, v := range values {
		if v != "" {
			statuses = append(statuses, queues.Status(v))
		}
	}

	if len(statuses) == 1 && statuses[0] == queues.Latest {
		return queues.Statuses()
	}

	return statuses
}

func jobView(job queues.Job) JobView {
	if job.Stacktrace == nil {
		job.Stacktrace = []string{}
	}

	return JobView{
		ID:           job.ID,
		Timestamp:    job.Timestamp,
		ProcessedOn:  job.ProcessedOn,
		FinishedOn:   job.FinishedOn,
		Progress:     job.Progress,
		Attempts:     job.AttemptsMade,
		Delay:        job.Delay,
		FailedReason: job.FailedReason,
		Stacktrace:   job.Stacktrace,
		Opts:         job.Opts,
		Data:         job.Data,
	}
}

func first(params map[string][]string, key string) string {
	if v := params[key]; len(v) > 0 {
		return v[0]
	}

	return ""
}
