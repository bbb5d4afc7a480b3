package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// newQueueboardHandler does not output anything directly and relies on other slog.Handlers to do so.
// If no Handlers are provided via WithHandler, a default JSON handler logs to os.Stderr.
func newQueueboardHandler(opts ...LoggerOpt) *queueboardHandler {
	defaultLevel := slog.LevelInfo

	h := &queueboardHandler{
		handlers: []slog.Handler{},
		level:    &defaultLevel,
	}

	for _, opt := range opts {
		opt(h)
	}

	if len(h.handlers) == 0 {
		h.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, getDefaultHandlerOptions())}
	}

	return h
}

// queueboardHandler logs to multiple handlers and does all the lifting for observability.
type queueboardHandler struct {
	// level reports the minimum record level that will be logged.
	// The level of individual handlers set via WithHandler is ignored.
	// It is shared by all handlers derived via WithAttrs or WithGroup.
	level *slog.Level

	// handlers is a list which all get called with the same log message.
	handlers []slog.Handler
}

var (
	_ slog.Handler     = (*queueboardHandler)(nil)
	_ QueueboardLogger = (*queueboardHandler)(nil)
)

func (h *queueboardHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= *h.level
}

func (h *queueboardHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	record = addTraceAndSpanIDsToLogs(span, record)

	if attrs, ok := FromContext(ctx); ok {
		record.AddAttrs(attrs...)
	}

	if span.IsRecording() {
		addLogsToActiveSpanAsEvent(span, getAttrsFromRecord(record), record)
	}

	var retErr error

	for _, handler := range h.handlers {
		retErr = errors.Join(retErr, handler.Handle(ctx, record))
	}

	return retErr
}

func (h *queueboardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}

	return &queueboardHandler{handlers: handlers, level: h.level}
}

func (h *queueboardHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}

	return &queueboardHandler{handlers: handlers, level: h.level}
}

// SetLevel changes the level for all handlers set with WithHandler().
// Even the ones "copied" via any WithX method.
func (h *queueboardHandler) SetLevel(level slog.Level) {
	*h.level = level
}

// Level returns the log level of the handler.
func (h *queueboardHandler) Level() slog.Level {
	return h.level.Level()
}

func addTraceAndSpanIDsToLogs(span trace.Span, record slog.Record) slog.Record {
	sCtx := span.SpanContext()

	if sCtx.HasTraceID() {
		record.AddAttrs(slog.String("traceID", sCtx.TraceID().String()))
	}

	if sCtx.HasSpanID() {
		record.AddAttrs(slog.String("spanID", sCtx.SpanID().String()))
	}

	return record
}

func addLogsToActiveSpanAsEvent(span trace.Span, attrs []attribute.KeyValue, record slog.Record) {
	span.AddEvent("log", trace.WithAttributes(attrs...))

	if record.Level >= slog.LevelError {
		span.SetStatus(codes.Error, record.Message)
	}
}

func getAttrsFromRecord(record slog.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	}

	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, attribute.String(a.Key, a.Value.String()))

		return true // process next attr
	})

	return attrs
}
