// Package app provides common decorators for use cases in the application layer.
package app

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/queueboard/alog"
)

// instrumentationName is the name used for the tracer and meter of all use cases.
const instrumentationName = "queueboard.application"

// Command produces side effects, e.g. retry a job.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// NewInstrumentedCommand is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	return NewTracedCommand(traceProvider, NewMeteredCommand(meterProvider, NewLoggedCommand(logger, cmd)))
}

// NewInstrumentedQuery is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	return NewTracedQuery(traceProvider, NewMeteredQuery(meterProvider, NewLoggedQuery(logger, query)))
}

// commandName extracts a printable name from cmd in the format of: context.package.structName.
//
// The use case function can not be used, as it is a closure returned by the use case constructor.
// Accessing the function name with runtime.Caller(4) will always lead to ".func1".
func commandName(cmd any) string {
	pkgPath := reflect.TypeOf(cmd).PkgPath()

	// example: github.com/go-arrower/queueboard/contexts/dashboard/internal/application
	// take string after /contexts/ and then take string before /internal/
	afterContexts := strings.Split(pkgPath, "/contexts/")
	if len(afterContexts) == 2 { //nolint:mnd
		beforeInternal := strings.Split(afterContexts[1], "/internal/")
		if len(beforeInternal) == 2 { //nolint:mnd
			return fmt.Sprintf("%s.%T", beforeInternal[0], cmd)
		}
	}

	// not called from within a context => packageName.structName
	return fmt.Sprintf("%T", cmd)
}
