package diagram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/document"
)

// Gateway tries renderers in priority order per source kind.
type Gateway struct {
	chains         map[document.SourceKind][]Renderer
	attemptTimeout time.Duration
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithAttemptTimeout bounds each renderer attempt. Zero means only the
// caller's context applies.
func WithAttemptTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.attemptTimeout = d
	}
}

// NewGateway groups renderers by kind, keeping their relative order as the
// fallback priority.
func NewGateway(renderers []Renderer, opts ...GatewayOption) *Gateway {
	g := &Gateway{chains: make(map[document.SourceKind][]Renderer)}
	for _, r := range renderers {
		if r == nil {
			continue
		}
		g.chains[r.Kind()] = append(g.chains[r.Kind()], r)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Chain returns the renderers registered for kind in priority order.
func (g *Gateway) Chain(kind document.SourceKind) []Renderer {
	return append([]Renderer(nil), g.chains[kind]...)
}

// Render converts source through the chain for kind. Exactly one of the
// results is non-nil. Failure is returned as a value; Render never panics
// on renderer misbehavior.
func (g *Gateway) Render(ctx context.Context, kind document.SourceKind, source string) (*Artifact, *Failure) {
	a := &attempt{}
	fail := &Failure{Kind: kind}

	exhausted := func() (*Artifact, *Failure) {
		_ = a.transition(StateExhausted, 0)
		return nil, fail
	}

	if strings.TrimSpace(source) == "" {
		fail.Reasons = append(fail.Reasons, ErrEmptySource.Error())
		return exhausted()
	}

	chain := g.chains[kind]
	if len(chain) == 0 {
		fail.Reasons = append(fail.Reasons, fmt.Sprintf("%v: %s", ErrNoRenderers, kind))
		return exhausted()
	}

	for i, r := range chain {
		if err := ctx.Err(); err != nil {
			fail.Reasons = append(fail.Reasons, err.Error())
			break
		}
		if err := a.transition(StateTrying, i); err != nil {
			fail.Reasons = append(fail.Reasons, err.Error())
			break
		}

		if err := r.Available(); err != nil {
			fail.Reasons = append(fail.Reasons,
				newRendererError(r.Name(), "check", fmt.Errorf("%w: %v", ErrUnavailable, err)).Error())
			continue
		}

		art, err := g.try(ctx, r, source)
		if err != nil {
			fail.Reasons = append(fail.Reasons, err.Error())
			continue
		}

		if err := a.transition(StateSucceeded, i); err != nil {
			fail.Reasons = append(fail.Reasons, err.Error())
			break
		}
		return art, nil
	}

	return exhausted()
}

// try runs one candidate and validates its markup.
func (g *Gateway) try(ctx context.Context, r Renderer, source string) (art *Artifact, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			art = nil
			err = newRendererError(r.Name(), "render", fmt.Errorf("panic: %v", rec))
		}
	}()

	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}

	markup, err := r.Render(ctx, source)
	if err != nil {
		return nil, newRendererError(r.Name(), "render", err)
	}
	markup = strings.TrimSpace(markup)
	if markup == "" {
		return nil, newRendererError(r.Name(), "render", ErrEmptyMarkup)
	}

	w, h, err := IntrinsicSize(markup)
	if err != nil {
		return nil, newRendererError(r.Name(), "measure", err)
	}

	return &Artifact{Markup: markup, Width: w, Height: h, Renderer: r.Name()}, nil
}
