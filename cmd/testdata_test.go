package cmd_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/go-arrower/queueboard/cmd"
)

// newTestCLI returns the cli with a signal already sent,
// so long-running commands stop right after they started.
func newTestCLI() *cobra.Command {
	osSignal := make(chan os.Signal, 1)
	osSignal <- os.Interrupt

	return cmd.NewQueueboardCLI(osSignal)
}

const dashboardResponse = `{
	"stats": {"redis_version":"7.2.4","used_memory":"1572864","total_system_memory":"8589934592",
		"mem_fragmentation_ratio":"1.2","connected_clients":"3","blocked_clients":"0"},
	"queues": [
		{"name":"emails","counts":{"active":0,"waiting":1,"completed":10,"failed":2,"delayed":0,"paused":0},
		 "jobs":[{"id":"42","timestamp":1700000000000,"attempts":3,"delay":0,"failedReason":"smtp timeout",
		          "progress":0,"stacktrace":[],"opts":{},"data":{}}]},
		{"name":"images","counts":{"active":1,"waiting":0,"completed":0,"failed":0,"delayed":0,"paused":0},"jobs":[]}
	]
}`

// dashboardServer answers every poll with dashboardResponse and records the query.
type dashboardServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []string
}

func newDashboardServer(t *testing.T) *dashboardServer {
	t.Helper()

	s := &dashboardServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/queues/queues/" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		s.mu.Lock()
		s.queries = append(s.queries, r.URL.RawQuery)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dashboardResponse))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *dashboardServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.queries...)
}
