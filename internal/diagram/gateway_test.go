package diagram

// Notes:
// - Renderers are hand-written mocks; the concrete renderers have their own
//   tests, and those needing Chrome or binaries sit behind the integration tag
// - Failure reasons are checked by substring, not exact text

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-md2doc/internal/document"
)

// ---------------------------------------------------------------------------
// TestGateway_Render - Fallback Order
// ---------------------------------------------------------------------------

func TestGateway_Render_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	first := &mockRenderer{name: "first", kind: document.SourceMermaid, output: testSVG}
	second := &mockRenderer{name: "second", kind: document.SourceMermaid, output: testSVG}
	g := NewGateway([]Renderer{first, second})

	art, fail := g.Render(context.Background(), document.SourceMermaid, "graph TD; A-->B")
	if fail != nil {
		t.Fatalf("Render() failure = %v", fail.Reason())
	}
	if art.Renderer != "first" {
		t.Errorf("Renderer = %q, want %q", art.Renderer, "first")
	}
	if art.Width != 200 || art.Height != 100 {
		t.Errorf("size = %vx%v, want 200x100 from viewBox", art.Width, art.Height)
	}
	if second.calls() != 0 {
		t.Errorf("second renderer called %d times, want 0", second.calls())
	}
}

func TestGateway_Render_FallsThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		first  *mockRenderer
		reason string
	}{
		{
			name:   "error",
			first:  &mockRenderer{name: "a", kind: document.SourceMermaid, err: errors.New("boom")},
			reason: "boom",
		},
		{
			name:   "empty markup",
			first:  &mockRenderer{name: "a", kind: document.SourceMermaid, output: "   "},
			reason: ErrEmptyMarkup.Error(),
		},
		{
			name:   "not svg",
			first:  &mockRenderer{name: "a", kind: document.SourceMermaid, output: "<html></html>"},
			reason: "not an SVG",
		},
		{
			name:   "unavailable",
			first:  &mockRenderer{name: "a", kind: document.SourceMermaid, unavailable: errors.New("mmdc not found")},
			reason: "mmdc not found",
		},
		{
			name:   "panic",
			first:  &mockRenderer{name: "a", kind: document.SourceMermaid, panicWith: "bad"},
			reason: "panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			second := &mockRenderer{name: "b", kind: document.SourceMermaid, output: testSVG}
			g := NewGateway([]Renderer{tt.first, second})

			art, fail := g.Render(context.Background(), document.SourceMermaid, "graph TD")
			if fail != nil {
				t.Fatalf("Render() failure = %v", fail.Reason())
			}
			if art.Renderer != "b" {
				t.Errorf("Renderer = %q, want %q", art.Renderer, "b")
			}
		})
	}
}

func TestGateway_Render_UnavailableNotCalled(t *testing.T) {
	t.Parallel()

	off := &mockRenderer{name: "off", kind: document.SourceGraphviz, unavailable: errors.New("dot not found on PATH")}
	g := NewGateway([]Renderer{off})

	_, fail := g.Render(context.Background(), document.SourceGraphviz, "digraph{}")
	if fail == nil {
		t.Fatal("Render() expected failure")
	}
	if off.calls() != 0 {
		t.Errorf("unavailable renderer called %d times", off.calls())
	}
	if !strings.Contains(fail.Reason(), "dot not found") {
		t.Errorf("Reason() = %q, want availability reason", fail.Reason())
	}
}

// ---------------------------------------------------------------------------
// TestGateway_Render - Exhaustion
// ---------------------------------------------------------------------------

func TestGateway_Render_Exhausted(t *testing.T) {
	t.Parallel()

	a := &mockRenderer{name: "rod", kind: document.SourceMermaid, err: errors.New("no chrome")}
	b := &mockRenderer{name: "mmdc", kind: document.SourceMermaid, err: errors.New("exit 1")}
	g := NewGateway([]Renderer{a, b})

	art, fail := g.Render(context.Background(), document.SourceMermaid, "graph TD")
	if art != nil {
		t.Fatalf("Render() artifact = %+v, want nil", art)
	}
	if fail == nil {
		t.Fatal("Render() failure is nil")
	}
	if fail.Kind != document.SourceMermaid {
		t.Errorf("Kind = %q", fail.Kind)
	}
	if len(fail.Reasons) != 2 {
		t.Fatalf("got %d reasons, want 2: %v", len(fail.Reasons), fail.Reasons)
	}
	if !strings.Contains(fail.Reasons[0], "rod") || !strings.Contains(fail.Reasons[1], "mmdc") {
		t.Errorf("reasons out of priority order: %v", fail.Reasons)
	}
}

func TestGateway_Render_EmptySource(t *testing.T) {
	t.Parallel()

	r := &mockRenderer{name: "a", kind: document.SourceMermaid, output: testSVG}
	g := NewGateway([]Renderer{r})

	_, fail := g.Render(context.Background(), document.SourceMermaid, " \n\t")
	if fail == nil {
		t.Fatal("Render() expected failure for empty source")
	}
	if r.calls() != 0 {
		t.Errorf("renderer called %d times for empty source", r.calls())
	}
}

func TestGateway_Render_NoChain(t *testing.T) {
	t.Parallel()

	g := NewGateway(nil)
	_, fail := g.Render(context.Background(), document.SourceASCII, "+--+")
	if fail == nil || !strings.Contains(fail.Reason(), "no renderer registered") {
		t.Errorf("Render() failure = %v, want no renderer registered", fail)
	}
}

func TestGateway_Render_CancelledContext(t *testing.T) {
	t.Parallel()

	r := &mockRenderer{name: "a", kind: document.SourceMermaid, output: testSVG}
	g := NewGateway([]Renderer{r})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, fail := g.Render(ctx, document.SourceMermaid, "graph TD")
	if fail == nil {
		t.Fatal("Render() expected failure on cancelled context")
	}
	if r.calls() != 0 {
		t.Errorf("renderer called %d times after cancellation", r.calls())
	}
}

// slowRenderer blocks until its context ends.
type slowRenderer struct{ mockRenderer }

func (s *slowRenderer) Render(ctx context.Context, source string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGateway_Render_AttemptTimeout(t *testing.T) {
	t.Parallel()

	slow := &slowRenderer{mockRenderer{name: "slow", kind: document.SourceMermaid}}
	fast := &mockRenderer{name: "fast", kind: document.SourceMermaid, output: testSVG}
	g := NewGateway([]Renderer{slow, fast}, WithAttemptTimeout(20*time.Millisecond))

	art, fail := g.Render(context.Background(), document.SourceMermaid, "graph TD")
	if fail != nil {
		t.Fatalf("Render() failure = %v", fail.Reason())
	}
	if art.Renderer != "fast" {
		t.Errorf("Renderer = %q, want %q", art.Renderer, "fast")
	}
}

func TestGateway_Chain(t *testing.T) {
	t.Parallel()

	m := &mockRenderer{name: "m", kind: document.SourceMermaid}
	d := &mockRenderer{name: "d", kind: document.SourceGraphviz}
	g := NewGateway([]Renderer{m, nil, d})

	if got := g.Chain(document.SourceMermaid); len(got) != 1 || got[0].Name() != "m" {
		t.Errorf("Chain(mermaid) = %v", got)
	}
	if got := g.Chain(document.SourceASCII); len(got) != 0 {
		t.Errorf("Chain(ascii) = %v, want empty", got)
	}
}

func TestRendererError(t *testing.T) {
	t.Parallel()

	err := newRendererError("mmdc", "render", ErrEmptyMarkup)
	if !errors.Is(err, ErrEmptyMarkup) {
		t.Error("RendererError does not unwrap to its cause")
	}
	var re *RendererError
	if !errors.As(err, &re) || re.Renderer != "mmdc" {
		t.Errorf("errors.As() = %+v", re)
	}
	if err.Error() != "mmdc render: renderer returned empty markup" {
		t.Errorf("Error() = %q", err.Error())
	}
}
