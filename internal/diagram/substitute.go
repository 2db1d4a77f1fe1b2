package diagram

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alnah/go-md2doc/internal/document"
)

// idNamespace seeds the deterministic diagram ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/alnah/go-md2doc/diagram"))

// DiagramID returns a stable id for the ordinal-th diagram of a document.
// The same source at the same position always yields the same id.
func DiagramID(kind document.SourceKind, ordinal int, raw string) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", kind, ordinal, raw)
	return "diagram-" + uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// Report summarizes one substitution pass.
type Report struct {
	Rendered    int
	Fallbacks   int
	Diagnostics []document.Diagnostic
}

// Substituter replaces every placeholder of a tree with an artifact or a
// fallback node.
type Substituter struct {
	gateway     *Gateway
	parallelism int
}

// SubstituterOption configures a Substituter.
type SubstituterOption func(*Substituter)

// WithParallelism renders up to n diagrams at once. Splicing still happens
// in document order. Values below 2 render sequentially.
func WithParallelism(n int) SubstituterOption {
	return func(s *Substituter) {
		s.parallelism = n
	}
}

// NewSubstituter creates a Substituter backed by g.
func NewSubstituter(g *Gateway, opts ...SubstituterOption) *Substituter {
	s := &Substituter{gateway: g, parallelism: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome struct {
	artifact *Artifact
	failure  *Failure
}

// Substitute mutates root in place. The only error returned is the
// context's: diagram failures become fallback nodes and diagnostics.
func (s *Substituter) Substitute(ctx context.Context, root *document.Node) (*Report, error) {
	report := &Report{}
	slots := document.FindPlaceholders(root)
	if len(slots) == 0 {
		return report, nil
	}

	placeholders := make([]*document.Node, len(slots))
	for i, slot := range slots {
		placeholders[i] = slot.Node()
	}

	outcomes := s.renderAll(ctx, placeholders)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for i, slot := range slots {
		ph := placeholders[i]
		d := ph.Diagram
		if d == nil {
			// Nothing to render: fall back to an empty source box so no
			// placeholder survives substitution.
			const reason = "placeholder without payload"
			repl := &document.Node{
				Kind:    document.KindDiagramFallback,
				Diagram: &document.Diagram{ID: DiagramID("", i, ""), Reason: reason},
			}
			msg := reason
			if err := document.Replace(slot, ph, repl); err != nil {
				msg = err.Error()
			} else {
				report.Fallbacks++
			}
			report.Diagnostics = append(report.Diagnostics, document.Diagnostic{
				Kind:    document.DiagMalformedNode,
				Block:   i,
				Message: msg,
			})
			continue
		}
		id := DiagramID(d.Source, i, d.Raw)

		var repl *document.Node
		var diag document.Diagnostic
		if o := outcomes[i]; o.artifact != nil {
			repl = &document.Node{
				Kind: document.KindDiagramArtifact,
				Diagram: &document.Diagram{
					Source:   d.Source,
					Raw:      d.Raw,
					ID:       id,
					Markup:   o.artifact.Markup,
					Width:    o.artifact.Width,
					Height:   o.artifact.Height,
					Renderer: o.artifact.Renderer,
				},
			}
			diag = document.Diagnostic{
				Kind:     document.DiagRendered,
				Block:    i,
				Source:   d.Source,
				Renderer: o.artifact.Renderer,
				Message:  fmt.Sprintf("%.0fx%.0f", o.artifact.Width, o.artifact.Height),
			}
			report.Rendered++
		} else {
			reason := o.failure.Reason()
			repl = &document.Node{
				Kind: document.KindDiagramFallback,
				Diagram: &document.Diagram{
					Source: d.Source,
					Raw:    d.Raw,
					ID:     id,
					Reason: reason,
				},
			}
			diag = document.Diagnostic{
				Kind:    document.DiagRendererExhaustion,
				Block:   i,
				Source:  d.Source,
				Message: reason,
			}
			report.Fallbacks++
		}

		if err := document.Replace(slot, ph, repl); err != nil {
			report.Diagnostics = append(report.Diagnostics, document.Diagnostic{
				Kind:    document.DiagMalformedNode,
				Block:   i,
				Source:  d.Source,
				Message: err.Error(),
			})
			continue
		}
		report.Diagnostics = append(report.Diagnostics, diag)
	}
	return report, nil
}

// renderAll renders every placeholder, concurrently when configured.
// outcomes[i] always belongs to placeholders[i].
func (s *Substituter) renderAll(ctx context.Context, placeholders []*document.Node) []outcome {
	outcomes := make([]outcome, len(placeholders))
	render := func(i int) {
		d := placeholders[i].Diagram
		if d == nil {
			return
		}
		art, fail := s.gateway.Render(ctx, d.Source, d.Raw)
		outcomes[i] = outcome{artifact: art, failure: fail}
	}

	if s.parallelism < 2 || len(placeholders) < 2 {
		for i := range placeholders {
			render(i)
		}
		return outcomes
	}

	sem := make(chan struct{}, s.parallelism)
	var wg sync.WaitGroup
	for i := range placeholders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			render(i)
		}(i)
	}
	wg.Wait()
	return outcomes
}
