package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	return &commandTracingDecorator[C]{
		tracer: traceProvider.Tracer(instrumentationName),
		base:   cmd,
	}
}

type commandTracingDecorator[C any] struct {
	tracer trace.Tracer
	base   Command[C]
}

func (d *commandTracingDecorator[C]) H(ctx context.Context, cmd C) error {
	newCtx, span := startUseCaseSpan(ctx, d.tracer, commandName(cmd))
	defer span.End()

	err := d.base.H(newCtx, cmd)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err //nolint:wrapcheck // decorate but not change anything
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	return &queryTracingDecorator[Q, Res]{
		tracer: traceProvider.Tracer(instrumentationName),
		base:   query,
	}
}

type queryTracingDecorator[Q any, Res any] struct {
	tracer trace.Tracer
	base   Query[Q, Res]
}

func (d *queryTracingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn // valid use of generics
	newCtx, span := startUseCaseSpan(ctx, d.tracer, commandName(query))
	defer span.End()

	result, err := d.base.H(newCtx, query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err //nolint:wrapcheck // decorate but not change anything
}

func startUseCaseSpan(ctx context.Context, tracer trace.Tracer, cmdName string) (context.Context, trace.Span) { //nolint:ireturn,lll // otel returns an interface
	return tracer.Start(ctx, "usecase", trace.WithAttributes(attribute.String("command", cmdName)))
}
