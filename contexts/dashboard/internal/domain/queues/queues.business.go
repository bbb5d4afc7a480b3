package queues

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// Status is one of the lifecycle states of a job.
type Status string

const (
	StatusActive    Status = "active"
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusDelayed   Status = "delayed"
	StatusPaused    Status = "paused"
)

// Latest selects all statuses at once. It is only valid when asking for jobs, it is not a Status of a job.
const Latest = "latest"

// Statuses returns all statuses in the order they are reported.
func Statuses() []Status {
	return []Status{StatusActive, StatusWaiting, StatusCompleted, StatusFailed, StatusDelayed, StatusPaused}
}

// ParseStatus returns the Status for s or ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses() {
		if string(status) == s {
			return status, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Cleanable reports whether all jobs of this status can be removed at once.
func (s Status) Cleanable() bool {
	return s == StatusFailed || s == StatusDelayed || s == StatusCompleted
}

// Retryable reports whether all jobs of this status can be retried at once.
func (s Status) Retryable() bool {
	return s == StatusFailed
}

// JobCounts is the number of jobs per Status.
type JobCounts map[Status]int64

// NewJobCounts returns JobCounts with a zero count for every status.
func NewJobCounts() JobCounts {
	counts := make(JobCounts, len(Statuses()))
	for _, s := range Statuses() {
		counts[s] = 0
	}

	return counts
}

// Job is the record a queue engine keeps about one unit of work.
// Data, Opts and Progress are kept as stored by the engine.
type Job struct {
	ID string

	// Timestamp, ProcessedOn and FinishedOn are unix milliseconds.
	Timestamp   int64
	ProcessedOn *int64
	FinishedOn  *int64

	Progress     json.RawMessage
	AttemptsMade int64
	Delay        int64

	FailedReason string
	Stacktrace   []string

	Opts json.RawMessage
	Data json.RawMessage
}

// statsKeys are the server metrics exposed to the dashboard.
var statsKeys = []string{ //nolint:gochecknoglobals // whitelist
	"redis_version",
	"used_memory",
	"mem_fragmentation_ratio",
	"connected_clients",
	"blocked_clients",
}

// ServerStats picks the metrics shown on the dashboard from a server's info.
// total_system_memory falls back to maxmemory if the server does not report it.
func ServerStats(info map[string]string) map[string]string {
	stats := map[string]string{}

	for _, key := range statsKeys {
		if v, ok := info[key]; ok {
			stats[key] = v
		}
	}

	if total := info["total_system_memory"]; total != "" {
		stats["total_system_memory"] = total
	} else if maxMemory := info["maxmemory"]; maxMemory != "" {
		stats["total_system_memory"] = maxMemory
	}

	return stats
}
