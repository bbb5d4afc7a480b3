package app_test

import (
	"context"
	"errors"
)

var (
	ctx     = context.Background()
	errSome = errors.New("some-error")
)

type (
	request  struct{}
	response struct{}
)

type structWithValidationTags struct {
	Queue  string `validate:"required"`
	Status string `validate:"required,oneof=failed delayed completed"`
}

var passingValidationValue = structWithValidationTags{Queue: "mails", Status: "failed"}
