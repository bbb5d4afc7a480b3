package app

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// NewValidatedCommand validates cmd by its struct tags before it reaches the handler.
// If validate is nil a validator with required structs enabled is used.
func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	return &commandValidatingDecorator[C]{
		validate: validate,
		base:     cmd,
	}
}

type commandValidatingDecorator[C any] struct {
	validate *validator.Validate
	base     Command[C]
}

func (d *commandValidatingDecorator[C]) H(ctx context.Context, cmd C) error {
	if err := d.validate.Struct(cmd); err != nil {
		return err //nolint:wrapcheck // validation error is returned on purpose
	}

	return d.base.H(ctx, cmd) //nolint:wrapcheck // decorate but not change anything
}
