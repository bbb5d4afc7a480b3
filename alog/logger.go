// Package alog is the structured logger of queueboard.
//
// It is a thin layer on top of log/slog, that fans a record out to multiple
// handlers, correlates every record with the active trace and
// lets the level be changed at run time.
package alog

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them, see:
//     https://dave.cheney.net/2015/11/05/lets-talk-about-logging
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)

	With(args ...any) *slog.Logger
	WithGroup(name string) *slog.Logger
}

var _ Logger = (*slog.Logger)(nil)

const (
	// LevelInfo is used to see what is going on inside queueboard, e.g. every poll of a queue.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used to see every call to a queue backend.
	LevelDebug = slog.Level(-12)

	levelNone = slog.Level(math.MaxInt)
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(logger *queueboardHandler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *queueboardHandler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at runtime use Unwrap(logger).SetLevel(LevelInfo).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *queueboardHandler) {
		l.level = &level
	}
}

// New returns a production ready logger.
//
// If no options are given it creates a default handler, logging JSON to Stderr.
// Otherwise, use WithHandler to set your own loggers.
// For an example of options at work, see NewDevelopment.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newQueueboardHandler(opts...))
}

// NewDevelopment returns a logger ready for local development purposes.
// Next to human-readable output on Stderr, all records are shipped to
// loki, if an instance is listening on loki.PushURL.
func NewDevelopment(loki LokiHandlerOptions) *slog.Logger {
	return New(
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, getDebugHandlerOptions())),
		WithHandler(NewLokiHandler(loki)),
	)
}

// NewNoop returns a logger that discards every record, e.g. as a dependency in tests.
func NewNoop() *slog.Logger {
	return New(WithLevel(levelNone), WithHandler(slog.NewTextHandler(io.Discard, nil)))
}

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name.
// Use it as slog.HandlerOptions.ReplaceAttr.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}

	level, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}

	if name, exists := levelNames[level]; exists {
		attr.Value = slog.StringValue(name)
	}

	return attr
}

var levelNames = map[slog.Level]string{ //nolint:gochecknoglobals // lookup table
	LevelInfo:  "QUEUEBOARD:INFO",
	LevelDebug: "QUEUEBOARD:DEBUG",
}

// QueueboardLogger offers additional control over the logger at run time.
// Unwrap a logger to get access to these features.
type QueueboardLogger interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

// Unwrap unwraps the given logger and returns a QueueboardLogger.
// In case of an invalid implementation of logger,
// it returns nil.
func Unwrap(logger Logger) QueueboardLogger { //nolint:ireturn // TestLogger and queueboardHandler both qualify
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	sl, ok := logger.(*slog.Logger)
	if !ok {
		return nil
	}

	if l, ok := sl.Handler().(*queueboardHandler); ok {
		return l
	}

	return nil
}

func getDefaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       nil, // this level is ignored, queueboardHandler's level is used for all handlers.
		ReplaceAttr: MapLogLevelsToName,
	}
}

// getDebugHandlerOptions is to keep the log output more readable, by removing not essential keys.
func getDebugHandlerOptions() *slog.HandlerOptions {
	opt := getDefaultHandlerOptions()
	opt.AddSource = false

	return opt
}
