package web_test

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/queueboard/contexts/dashboard/internal/views"
)

// newTestRouter is a helper for unit tests, by returning a valid web router.
func newTestRouter() *echo.Echo {
	r, err := views.NewRenderer()
	if err != nil {
		panic(err)
	}

	e := echo.New()
	e.Renderer = r
	e.Validator = structValidator{validate: validator.New(validator.WithRequiredStructEnabled())}

	return e
}

type structValidator struct {
	validate *validator.Validate
}

func (v structValidator) Validate(i any) error {
	return v.validate.Struct(i) //nolint:wrapcheck
}
