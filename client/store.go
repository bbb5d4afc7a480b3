// Package client polls a queueboard server and keeps the state of the dashboard,
// e.g. to render it in a terminal.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/go-arrower/queueboard/alog"
)

var (
	ErrPollFailed     = errors.New("poll failed")
	ErrMutationFailed = errors.New("mutation failed")
)

// DefaultInterval is the time between the end of one poll and the start of the next.
const DefaultInterval = 5 * time.Second

// State is replaced as a whole after every successful poll.
type State struct {
	// Data is nil until the first successful poll.
	Data    *Response
	Loading bool
}

type Option func(*Store)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) { s.http = client }
}

func WithClock(clock clock.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

func WithInterval(interval time.Duration) Option {
	return func(s *Store) { s.interval = interval }
}

func WithLogger(logger alog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithOnChange calls onChange with the new State after every successful poll.
func WithOnChange(onChange func(State)) Option {
	return func(s *Store) { s.onChange = onChange }
}

// NewStore returns a Store polling the dashboard served at baseURL,
// e.g. http://localhost:8080/admin/queues.
func NewStore(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		http:       http.DefaultClient,
		clock:      clock.New(),
		interval:   DefaultInterval,
		logger:     alog.NewNoop(),
		onChange:   nil,
		mu:         sync.Mutex{},
		state:      State{Data: nil, Loading: true},
		selected:   map[string]string{},
		pagination: DefaultPagination(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store is the view-model of the dashboard.
// It polls the server in a loop and exposes the actions to manage jobs.
//
// Changing the selected statuses or the pagination restarts the loop.
// Only the response of the latest poll is applied to the State,
// so a slow response can not overwrite a newer one.
type Store struct { //nolint:govet // alignment less important than grouping of mutex
	baseURL  string
	http     *http.Client
	clock    clock.Clock
	interval time.Duration
	logger   alog.Logger
	onChange func(State)

	mu         sync.Mutex
	state      State
	selected   map[string]string
	pagination Pagination

	running bool
	timer   *clock.Timer
	// loop identifies the current poll loop, older loops stop scheduling.
	loop uint64
	// generation identifies the latest poll issued.
	generation uint64
}

// Start polls immediately and keeps polling until ctx is done or Stop is called.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.restart(ctx)

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	}
}

// Stop cancels the next poll and discards the responses of polls in flight.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.cancelTimer()
	s.loop++
	s.generation++
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Store) SelectedStatuses() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.selected)
}

// SetSelectedStatuses selects the status of the jobs to show per queue name.
// Queues without a status only report their counts.
func (s *Store) SetSelectedStatuses(ctx context.Context, selected map[string]string) {
	s.mu.Lock()
	s.selected = maps.Clone(selected)
	s.mu.Unlock()

	s.restartIfRunning(ctx)
}

func (s *Store) Pagination() Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pagination
}

func (s *Store) SetPagination(ctx context.Context, pagination Pagination) {
	s.mu.Lock()
	s.pagination = pagination
	s.mu.Unlock()

	s.restartIfRunning(ctx)
}

func (s *Store) restartIfRunning(ctx context.Context) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if running {
		s.restart(ctx)
	}
}

// restart cancels the pending poll, polls immediately and schedules the next poll.
func (s *Store) restart(ctx context.Context) {
	s.mu.Lock()
	s.cancelTimer()
	s.loop++
	loop := s.loop
	s.mu.Unlock()

	s.run(ctx, loop)
}

func (s *Store) run(ctx context.Context, loop uint64) {
	_ = s.Poll(ctx) // failures are logged, the loop continues

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || loop != s.loop {
		return
	}

	s.timer = s.clock.AfterFunc(s.interval, func() { s.run(ctx, loop) })
}

// cancelTimer has to be called with mu locked.
func (s *Store) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Poll fetches the state of all queues once and updates the State on success.
func (s *Store) Poll(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	query := s.query()
	s.mu.Unlock()

	res, err := s.fetch(ctx, query)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to poll", slog.String("err", err.Error()))

		return err
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "discard outdated poll", slog.Uint64("generation", generation))

		return nil
	}

	s.state = State{Data: &res, Loading: false}
	state := s.state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(state)
	}

	return nil
}

// query has to be called with mu locked.
func (s *Store) query() url.Values {
	if len(s.selected) == 0 {
		return url.Values{}
	}

	query := url.Values{}
	for queue, status := range s.selected {
		query.Set(queue, status)
	}

	query.Set("start", strconv.Itoa(s.pagination.Start))
	query.Set("end", strconv.Itoa(s.pagination.End))

	return query
}

func (s *Store) fetch(ctx context.Context, query url.Values) (Response, error) {
	u := s.baseURL + "/queues/"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrPollFailed, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrPollFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)

		return Response{}, fmt.Errorf("%w: unexpected status: %s", ErrPollFailed, resp.Status)
	}

	var res Response
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Response{}, fmt.Errorf("%w: could not decode response: %w", ErrPollFailed, err)
	}

	return res, nil
}

func (s *Store) RetryJob(ctx context.Context, queue string, jobID string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/"+jobID+"/retry")
}

func (s *Store) PromoteJob(ctx context.Context, queue string, jobID string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/"+jobID+"/promote")
}

// RetryAll retries all failed jobs of the queue.
func (s *Store) RetryAll(ctx context.Context, queue string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/retry")
}

func (s *Store) CleanAllFailed(ctx context.Context, queue string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/clean/"+StatusFailed)
}

func (s *Store) CleanAllDelayed(ctx context.Context, queue string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/clean/"+StatusDelayed)
}

func (s *Store) CleanAllCompleted(ctx context.Context, queue string) error {
	return s.mutate(ctx, url.PathEscape(queue)+"/clean/"+StatusCompleted)
}

// mutate sends one PUT and polls once, as soon as the server answered.
// The scheduled poll is not affected.
func (s *Store) mutate(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/queues/"+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	var mutationErr error
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		mutationErr = fmt.Errorf("%w: unexpected status: %s", ErrMutationFailed, resp.Status)
	}

	return errors.Join(mutationErr, s.Poll(ctx))
}
