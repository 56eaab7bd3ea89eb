package autoblog

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// renderBytes renders cmp fully before anything is written, so a failing
// component never leaves a half-sent page or a truncated file.
func renderBytes(ctx context.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes a panel component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a panel component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	body, err := renderBytes(c.Request().Context(), cmp)
	if err != nil {
		return err
	}
	return c.HTMLBlob(code, body)
}
