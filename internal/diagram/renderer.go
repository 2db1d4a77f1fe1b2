package diagram

import (
	"context"
	"strings"

	"github.com/alnah/go-md2doc/internal/document"
)

// Renderer turns diagram source of one kind into SVG markup.
type Renderer interface {
	// Name identifies the renderer in diagnostics ("rod", "mmdc", ...).
	Name() string
	// Kind is the source kind the renderer accepts.
	Kind() document.SourceKind
	// Available returns nil when the renderer can run, or the reason it
	// cannot. Unavailable renderers are skipped without being called.
	Available() error
	// Render returns SVG markup for source.
	Render(ctx context.Context, source string) (string, error)
}

// Artifact is a successfully rendered diagram.
type Artifact struct {
	Markup   string
	Width    float64
	Height   float64
	Renderer string
}

// Failure describes an exhausted renderer chain. Reasons has one entry per
// candidate, in priority order.
type Failure struct {
	Kind    document.SourceKind
	Reasons []string
}

// Reason joins the per-candidate reasons.
func (f *Failure) Reason() string {
	if f == nil {
		return ""
	}
	if len(f.Reasons) == 0 {
		return "no renderer available"
	}
	return strings.Join(f.Reasons, "; ")
}
