// Package views contains the dashboard page served to the browser.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"
)

//go:embed *.html
var DashboardViews embed.FS

// NewRenderer parses all dashboard views. Templates are addressed by their file name, e.g. "index.html".
func NewRenderer() (*Renderer, error) {
	templates, err := template.New("").Funcs(sprig.FuncMap()).ParseFS(DashboardViews, "*.html")
	if err != nil {
		return nil, fmt.Errorf("could not parse dashboard views: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// Renderer is an echo.Renderer for the dashboard views.
type Renderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("could not render %s: %w", name, err)
	}

	return nil
}
