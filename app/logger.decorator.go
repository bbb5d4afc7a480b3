package app

import (
	"context"
	"log/slog"

	"github.com/go-arrower/queueboard/alog"
)

func NewLoggedCommand[C any](logger alog.Logger, handler Command[C]) Command[C] {
	return &commandLoggingDecorator[C]{
		logger: logger,
		base:   handler,
	}
}

type commandLoggingDecorator[C any] struct {
	logger alog.Logger
	base   Command[C]
}

func (d *commandLoggingDecorator[C]) H(ctx context.Context, cmd C) error {
	done := logExecution(ctx, d.logger, "command", commandName(cmd))

	err := d.base.H(ctx, cmd)
	done(err)

	return err //nolint:wrapcheck // decorate but not change anything
}

func NewLoggedQuery[Q any, Res any](logger alog.Logger, handler Query[Q, Res]) Query[Q, Res] {
	return &queryLoggingDecorator[Q, Res]{
		logger: logger,
		base:   handler,
	}
}

type queryLoggingDecorator[Q any, Res any] struct {
	logger alog.Logger
	base   Query[Q, Res]
}

func (d *queryLoggingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn // valid use of generics
	done := logExecution(ctx, d.logger, "query", commandName(query))

	res, err := d.base.H(ctx, query)
	done(err)

	return res, err //nolint:wrapcheck // decorate but not change anything
}

// logExecution logs the start of a use case and returns a func to log its outcome.
func logExecution(ctx context.Context, logger alog.Logger, kind string, name string) func(err error) {
	logger.DebugContext(ctx, "executing "+kind, slog.String("command", name))

	return func(err error) {
		if err != nil {
			logger.DebugContext(ctx, "failed to execute "+kind,
				slog.String("command", name),
				slog.String("error", err.Error()),
			)

			return
		}

		logger.DebugContext(ctx, kind+" executed successfully", slog.String("command", name))
	}
}
