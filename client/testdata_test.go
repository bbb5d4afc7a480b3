package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

var ctx = context.Background()

type request struct {
	Method string
	Path   string
	Query  string
}

// dashboardServer is a fake queueboard server recording all requests.
type dashboardServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []request
	// pollStatus is the status code of the next polls.
	pollStatus   int
	pollBody     string
	mutateStatus int
}

func newDashboardServer(t *testing.T) *dashboardServer {
	t.Helper()

	s := &dashboardServer{
		pollStatus:   http.StatusOK,
		pollBody:     `{"stats":{"redis_version":"7.2.4"},"queues":[{"name":"emails","counts":{"failed":2},"jobs":[]}]}`,
		mutateStatus: http.StatusOK,
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, request{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery})
		pollStatus, pollBody, mutateStatus := s.pollStatus, s.pollBody, s.mutateStatus
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			w.WriteHeader(pollStatus)
			_, _ = w.Write([]byte(pollBody))

			return
		}

		w.WriteHeader(mutateStatus)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *dashboardServer) Requests() []request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]request{}, s.requests...)
}

func (s *dashboardServer) Polls() int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == http.MethodGet {
			n++
		}
	}

	return n
}

func (s *dashboardServer) SetPoll(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollStatus = status
	if body != "" {
		s.pollBody = body
	}
}

func (s *dashboardServer) SetMutateStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mutateStatus = status
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
