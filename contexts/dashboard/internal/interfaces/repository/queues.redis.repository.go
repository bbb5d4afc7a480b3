package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

const DefaultPrefix = "bull"

// NewRedisQueue returns a Queue reading the key layout of the bull job queue library.
func NewRedisQueue(client redis.UniversalClient, name string, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &RedisQueue{client: client, name: name, prefix: prefix}
}

// RedisQueue stores waiting, active and paused jobs in lists (newest first)
// and completed, failed and delayed jobs in sorted sets (newest = highest score).
// Each job is a hash under <prefix>:<queue>:<job id>.
type RedisQueue struct {
	client redis.UniversalClient
	name   string
	prefix string
}

var _ queues.Queue = (*RedisQueue)(nil)

func (q *RedisQueue) JobCounts(ctx context.Context) (queues.JobCounts, error) {
	pipe := q.client.Pipeline()
	cmds := make(map[queues.Status]*redis.IntCmd, len(queues.Statuses()))

	for _, status := range queues.Statuses() {
		if isList(status) {
			cmds[status] = pipe.LLen(ctx, q.statusKey(status))
		} else {
			cmds[status] = pipe.ZCard(ctx, q.statusKey(status))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: could not count jobs of queue %s: %w", queues.ErrQueueUnavailable, q.name, err)
	}

	counts := queues.NewJobCounts()
	for status, cmd := range cmds {
		counts[status] = cmd.Val()
	}

	return counts, nil
}

func (q *RedisQueue) Jobs(ctx context.Context, statuses []queues.Status, start int, end int) ([]queues.Job, error) {
	if len(statuses) == 0 {
		return []queues.Job{}, nil
	}

	pipe := q.client.Pipeline()
	ranges := make([]*redis.StringSliceCmd, 0, len(statuses))

	for _, status := range statuses {
		if _, err := queues.ParseStatus(string(status)); err != nil {
			return nil, err //nolint:wrapcheck // is a domain error already
		}

		if isList(status) {
			ranges = append(ranges, pipe.LRange(ctx, q.statusKey(status), int64(start), int64(end)))
		} else {
			ranges = append(ranges, pipe.ZRevRange(ctx, q.statusKey(status), int64(start), int64(end)))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: could not get job ids of queue %s: %w", queues.ErrQueueUnavailable, q.name, err)
	}

	ids := []string{}
	for _, r := range ranges {
		ids = append(ids, r.Val()...)
	}

	return q.jobsByID(ctx, ids)
}

func (q *RedisQueue) jobsByID(ctx context.Context, ids []string) ([]queues.Job, error) {
	jobs := make([]queues.Job, 0, len(ids))
	if len(ids) == 0 {
		return jobs, nil
	}

	pipe := q.client.Pipeline()
	hashes := make([]*redis.MapStringStringCmd, len(ids))

	for i, id := range ids {
		hashes[i] = pipe.HGetAll(ctx, q.jobKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: could not get jobs of queue %s: %w", queues.ErrQueueUnavailable, q.name, err)
	}

	for i, hash := range hashes {
		fields := hash.Val()
		if len(fields) == 0 { // removed in between
			continue
		}

		jobs = append(jobs, jobFromHash(ids[i], fields))
	}

	return jobs, nil
}

func (q *RedisQueue) ServerInfo(ctx context.Context) (map[string]string, error) {
	raw, err := q.client.Info(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: could not get server info: %w", queues.ErrQueueUnavailable, err)
	}

	return parseInfo(raw), nil
}

func (q *RedisQueue) RetryJob(ctx context.Context, jobID string) error {
	res, err := retryJobScript.Run(ctx, q.client, []string{
		q.statusKey(queues.StatusFailed),
		q.statusKey(queues.StatusWaiting),
		q.statusKey(queues.StatusPaused),
		q.key("meta-paused"),
		q.jobKey(jobID),
	}, jobID).Int()
	if err != nil {
		return fmt.Errorf("%w: could not retry job %s: %w", queues.ErrQueueUnavailable, jobID, err)
	}

	return scriptResult(res, jobID, queues.StatusFailed)
}

func (q *RedisQueue) PromoteJob(ctx context.Context, jobID string) error {
	res, err := promoteJobScript.Run(ctx, q.client, []string{
		q.statusKey(queues.StatusDelayed),
		q.statusKey(queues.StatusWaiting),
		q.statusKey(queues.StatusPaused),
		q.key("meta-paused"),
		q.jobKey(jobID),
	}, jobID).Int()
	if err != nil {
		return fmt.Errorf("%w: could not promote job %s: %w", queues.ErrQueueUnavailable, jobID, err)
	}

	return scriptResult(res, jobID, queues.StatusDelayed)
}

func (q *RedisQueue) RetryAll(ctx context.Context) error {
	ids, err := q.client.ZRange(ctx, q.statusKey(queues.StatusFailed), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: could not get failed jobs: %w", queues.ErrQueueUnavailable, err)
	}

	for _, id := range ids {
		err := q.RetryJob(ctx, id)
		if err != nil && !errors.Is(err, queues.ErrJobNotFound) { // retried or removed by someone else
			return err
		}
	}

	return nil
}

// Clean removes all jobs of the given status.
func (q *RedisQueue) Clean(ctx context.Context, status queues.Status) error {
	if !status.Cleanable() {
		return fmt.Errorf("%w: can not clean %s jobs", queues.ErrInvalidStatus, status)
	}

	key := q.statusKey(status)

	ids, err := q.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: could not get %s jobs: %w", queues.ErrQueueUnavailable, status, err)
	}

	if len(ids) == 0 {
		return nil
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		members := make([]any, len(ids))
		keys := make([]string, 0, 2*len(ids)) //nolint:mnd // hash and logs of each job

		for i, id := range ids {
			members[i] = id
			keys = append(keys, q.jobKey(id), q.jobKey(id)+":logs")
		}

		pipe.ZRem(ctx, key, members...)
		pipe.Del(ctx, keys...)

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: could not clean %s jobs: %w", queues.ErrQueueUnavailable, status, err)
	}

	return nil
}

func (q *RedisQueue) key(suffix string) string {
	return q.prefix + ":" + q.name + ":" + suffix
}

func (q *RedisQueue) jobKey(id string) string {
	return q.key(id)
}

func (q *RedisQueue) statusKey(status queues.Status) string {
	if status == queues.StatusWaiting {
		return q.key("wait")
	}

	return q.key(string(status))
}

func isList(status queues.Status) bool {
	return status == queues.StatusWaiting || status == queues.StatusActive || status == queues.StatusPaused
}

func scriptResult(res int, jobID string, status queues.Status) error {
	switch res {
	case scriptJobMissing:
		return fmt.Errorf("%w: %s", queues.ErrJobNotFound, jobID)
	case scriptJobWrongState:
		return fmt.Errorf("%w: %s is not %s", queues.ErrJobNotFound, jobID, status)
	default:
		return nil
	}
}

func jobFromHash(id string, fields map[string]string) queues.Job {
	job := queues.Job{
		ID:           id,
		Timestamp:    parseInt(fields["timestamp"]),
		Progress:     rawJSON(fields["progress"], "0"),
		AttemptsMade: parseInt(fields["attemptsMade"]),
		Delay:        parseInt(fields["delay"]),
		FailedReason: fields["failedReason"],
		Stacktrace:   []string{},
		Opts:         rawJSON(fields["opts"], "{}"),
		Data:         rawJSON(fields["data"], "{}"),
	}

	if v, ok := fields["processedOn"]; ok && v != "" {
		processedOn := parseInt(v)
		job.ProcessedOn = &processedOn
	}

	if v, ok := fields["finishedOn"]; ok && v != "" {
		finishedOn := parseInt(v)
		job.FinishedOn = &finishedOn
	}

	if v := fields["stacktrace"]; v != "" {
		_ = json.Unmarshal([]byte(v), &job.Stacktrace) // a broken stacktrace is shown as empty
	}

	return job
}

// parseInt returns 0 for values that are not a number, as the queue engine does.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}

		return int64(f)
	}

	return n
}

// rawJSON returns s if it is valid JSON, def if s is empty and
// s as JSON string otherwise.
func rawJSON(s string, def string) json.RawMessage {
	if s == "" {
		return json.RawMessage(def)
	}

	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}

	b, _ := json.Marshal(s) // marshalling a string does not fail

	return b
}

// parseInfo parses the output of the redis INFO command,
// which consists of "key:value" lines and "# Section" headers.
func parseInfo(raw string) map[string]string {
	info := map[string]string{}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		info[key] = value
	}

	return info
}
