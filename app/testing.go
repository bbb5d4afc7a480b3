package app

import (
	"context"
	"errors"
)

//
// This file contains convenience helpers you can use to easier test
// your calling code relying on this use case pattern.
//

var ErrUseCaseFailed = errors.New("usecase failed")

func TestSuccessCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return nil })
}

func TestFailureCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(context.Context, C) error { return ErrUseCaseFailed })
}

// TestCommandHandler turns handler into a Command, e.g. to assert on the received cmd.
func TestCommandHandler[C any](handler func(ctx context.Context, cmd C) error) Command[C] {
	return commandFunc[C](handler)
}

type commandFunc[C any] func(ctx context.Context, cmd C) error

func (f commandFunc[C]) H(ctx context.Context, cmd C) error {
	return f(ctx, cmd)
}

func TestSuccessQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(context.Context, Q) (Res, error) {
		var result Res

		return result, nil
	})
}

func TestFailureQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(context.Context, Q) (Res, error) {
		var result Res

		return result, ErrUseCaseFailed
	})
}

// TestQueryHandler turns handler into a Query, e.g. to return a prepared result.
func TestQueryHandler[Q any, Res any](handler func(ctx context.Context, query Q) (Res, error)) Query[Q, Res] {
	return queryFunc[Q, Res](handler)
}

type queryFunc[Q any, Res any] func(ctx context.Context, query Q) (Res, error)

func (f queryFunc[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn // valid use of generics
	return f(ctx, query)
}
