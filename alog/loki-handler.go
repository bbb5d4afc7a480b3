package alog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/afiskon/promtail-client/promtail"
)

// DefaultLokiPushURL is the push endpoint of a loki instance started with its default settings.
const DefaultLokiPushURL = "http://localhost:3100/api/prom/push"

const (
	lokiRetryInterval = 15 * time.Second
	lokiPingTimeout   = time.Second
)

// LokiHandlerOptions configures the stream a LokiHandler ships to.
type LokiHandlerOptions struct {
	// Labels identify the stream in loki, e.g. the application and instance name.
	// Keep them of low cardinality, everything else belongs into the record.
	Labels map[string]string

	// PushURL defaults to DefaultLokiPushURL.
	PushURL string
}

// NewLokiHandler ships every record to a loki instance. Use it for local development only:
// in production queueboard logs to stderr and the container runtime ships the logs.
//
// If loki is not reachable the records are dropped. The connection is retried
// with the next record, at most once per lokiRetryInterval.
func NewLokiHandler(opt LokiHandlerOptions) *LokiHandler {
	buf := &bytes.Buffer{}

	return &LokiHandler{
		conn: &lokiConn{
			config: promtailConfig(opt),
			output: buf,
		},
		renderer: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       LevelDebug, // the level is controlled by queueboardHandler.
			ReplaceAttr: MapLogLevelsToName,
		}),
	}
}

// LokiHandler renders a record as JSON and pushes it as one line to loki.
// Handlers derived via WithAttrs or WithGroup share the same connection.
type LokiHandler struct {
	conn     *lokiConn
	renderer slog.Handler
}

var _ slog.Handler = (*LokiHandler)(nil)

func (l *LokiHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (l *LokiHandler) Handle(ctx context.Context, record slog.Record) error {
	l.conn.mu.Lock()
	defer l.conn.mu.Unlock()

	client := l.conn.connect(time.Now())
	if client == nil {
		return nil
	}

	defer l.conn.output.Reset()

	if err := l.renderer.Handle(ctx, record); err != nil {
		return fmt.Errorf("%w", err)
	}

	line := strings.TrimSpace(l.conn.output.String())

	// the level decides the colour in grafana
	switch {
	case record.Level >= slog.LevelError:
		client.Errorf("%s", line)
	case record.Level >= slog.LevelWarn:
		client.Warnf("%s", line)
	case record.Level >= slog.LevelInfo:
		client.Infof("%s", line)
	default:
		client.Debugf("%s", line)
	}

	return nil
}

func (l *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LokiHandler{conn: l.conn, renderer: l.renderer.WithAttrs(attrs)}
}

func (l *LokiHandler) WithGroup(name string) slog.Handler {
	return &LokiHandler{conn: l.conn, renderer: l.renderer.WithGroup(name)}
}

// lokiConn is the connection shared by a LokiHandler and all its derived handlers.
// mu guards the client as well as the output the renderers write to.
type lokiConn struct {
	mu          sync.Mutex
	config      promtail.ClientConfig
	client      promtail.Client
	lastAttempt time.Time
	output      *bytes.Buffer
}

// connect returns the promtail client or nil, if loki could not be reached.
// The caller has to hold mu.
func (c *lokiConn) connect(now time.Time) promtail.Client { //nolint:ireturn // promtail only offers the interface.
	if c.client != nil || now.Sub(c.lastAttempt) < lokiRetryInterval {
		return c.client
	}

	c.lastAttempt = now

	if !reachable(c.config.PushURL) {
		return nil
	}

	c.client, _ = promtail.NewClientJson(c.config) // promtail always returns a nil error.

	return c.client
}

func reachable(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lokiPingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}

	_ = res.Body.Close()

	return true
}

func promtailConfig(opt LokiHandlerOptions) promtail.ClientConfig {
	if opt.PushURL == "" {
		opt.PushURL = DefaultLokiPushURL
	}

	return promtail.ClientConfig{
		PushURL:            opt.PushURL,
		Labels:             lokiLabels(opt.Labels),
		BatchWait:          time.Second,
		BatchEntriesNumber: 1,
		SendLevel:          promtail.DEBUG,
		PrintLevel:         promtail.DISABLE,
	}
}

// lokiLabels renders labels as a stream selector, e.g. {app="queueboard",instance="a"}.
func lokiLabels(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))

	for _, k := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}

	return "{" + strings.Join(pairs, ",") + "}"
}
