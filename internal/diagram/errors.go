package diagram

import (
	"errors"
	"fmt"
)

// Sentinel errors for rendering.
var (
	ErrEmptySource  = errors.New("empty diagram source")
	ErrEmptyMarkup  = errors.New("renderer returned empty markup")
	ErrInvalidSVG   = errors.New("markup is not an SVG document")
	ErrNoRenderers  = errors.New("no renderer registered for source kind")
	ErrUnavailable  = errors.New("renderer unavailable")
	ErrInvalidState = errors.New("invalid render state transition")
)

// RendererError records which renderer failed and at which step.
type RendererError struct {
	Renderer  string
	Operation string
	Err       error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Renderer, e.Operation, e.Err)
}

func (e *RendererError) Unwrap() error {
	return e.Err
}

func newRendererError(renderer, operation string, err error) error {
	return &RendererError{Renderer: renderer, Operation: operation, Err: err}
}
