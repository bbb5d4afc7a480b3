package client

import "encoding/json"

// Statuses that can be selected for a queue.
const (
	StatusActive    = "active"
	StatusWaiting   = "waiting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusDelayed   = "delayed"
	StatusPaused    = "paused"
	// StatusLatest selects the jobs of all statuses.
	StatusLatest = "latest"
)

// Statuses returns all statuses a job can have, in the order they are reported.
func Statuses() []string {
	return []string{StatusActive, StatusWaiting, StatusCompleted, StatusFailed, StatusDelayed, StatusPaused}
}

// Response is the state of all queues, as returned by the dashboard server.
type Response struct {
	Stats  map[string]string `json:"stats"`
	Queues []Queue           `json:"queues"`
}

type Queue struct {
	Name   string           `json:"name"`
	Counts map[string]int64 `json:"counts"`
	Jobs   []Job            `json:"jobs"`
}

// Total is the number of jobs with the given status, or of all jobs for StatusLatest.
func (q Queue) Total(status string) int64 {
	if status != StatusLatest {
		return q.Counts[status]
	}

	var total int64
	for _, c := range q.Counts {
		total += c
	}

	return total
}

type Job struct {
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
