package diagram

// Notes:
// - The forced mermaid failure scenario: every mermaid renderer errors, the
//   tree gets exactly one fallback holding the source byte for byte and the
//   report one renderer_exhaustion diagnostic
// - Determinism is checked by running the same tree twice

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/alnah/go-md2doc/internal/document"
)

func diagramTree() *document.Node {
	return document.NewDocument(
		document.NewHeading(1, "Схемы"),
		document.NewPlaceholder(document.SourceMermaid, "graph TD\n  A-->B"),
		document.NewParagraph("между"),
		&document.Node{Kind: document.KindBlockquote, Children: []*document.Node{
			document.NewPlaceholder(document.SourceASCII, "┌──┐\n│ok│\n└──┘"),
		}},
		document.NewPlaceholder(document.SourceGraphviz, "digraph { a -> b }"),
	)
}

func kinds(root *document.Node) []document.Kind {
	var out []document.Kind
	document.Walk(root, func(n *document.Node) bool {
		if n.Kind.IsBlock() {
			out = append(out, n.Kind)
		}
		return true
	})
	return out
}

// ---------------------------------------------------------------------------
// TestSubstituter_Substitute
// ---------------------------------------------------------------------------

func TestSubstituter_Substitute_AllRendered(t *testing.T) {
	t.Parallel()

	g := NewGateway([]Renderer{
		&mockRenderer{name: "m", kind: document.SourceMermaid, output: testSVG},
		&mockRenderer{name: "a", kind: document.SourceASCII, output: testSVG},
		&mockRenderer{name: "d", kind: document.SourceGraphviz, output: testSVG},
	})
	root := diagramTree()

	report, err := NewSubstituter(g).Substitute(context.Background(), root)
	if err != nil {
		t.Fatalf("Substitute() unexpected error: %v", err)
	}
	if report.Rendered != 3 || report.Fallbacks != 0 {
		t.Errorf("Rendered/Fallbacks = %d/%d, want 3/0", report.Rendered, report.Fallbacks)
	}
	if left := document.FindPlaceholders(root); len(left) != 0 {
		t.Errorf("%d placeholders left", len(left))
	}

	want := []document.Kind{
		document.KindDocument, document.KindHeading, document.KindDiagramArtifact,
		document.KindParagraph, document.KindBlockquote, document.KindDiagramArtifact,
		document.KindDiagramArtifact,
	}
	if got := kinds(root); !reflect.DeepEqual(got, want) {
		t.Errorf("block order = %v, want %v", got, want)
	}

	for i, d := range report.Diagnostics {
		if d.Kind != document.DiagRendered || d.Block != i {
			t.Errorf("diagnostic %d = %+v", i, d)
		}
	}
}

func TestSubstituter_Substitute_ForcedMermaidFailure(t *testing.T) {
	t.Parallel()

	g := NewGateway([]Renderer{
		&mockRenderer{name: "rod", kind: document.SourceMermaid, err: errors.New("no chrome")},
		&mockRenderer{name: "mmdc", kind: document.SourceMermaid, unavailable: errors.New("mmdc not found on PATH")},
		&mockRenderer{name: "ink", kind: document.SourceMermaid, err: errors.New("offline")},
		&mockRenderer{name: "a", kind: document.SourceASCII, output: testSVG},
		&mockRenderer{name: "d", kind: document.SourceGraphviz, output: testSVG},
	})
	root := diagramTree()

	report, err := NewSubstituter(g).Substitute(context.Background(), root)
	if err != nil {
		t.Fatalf("Substitute() unexpected error: %v", err)
	}
	if report.Fallbacks != 1 || report.Rendered != 2 {
		t.Errorf("Rendered/Fallbacks = %d/%d, want 2/1", report.Rendered, report.Fallbacks)
	}

	var exhaustion []document.Diagnostic
	for _, d := range report.Diagnostics {
		if d.Kind == document.DiagRendererExhaustion {
			exhaustion = append(exhaustion, d)
		}
	}
	if len(exhaustion) != 1 || exhaustion[0].Source != document.SourceMermaid || exhaustion[0].Block != 0 {
		t.Fatalf("exhaustion diagnostics = %+v", exhaustion)
	}

	fb := root.Children[1]
	if fb.Kind != document.KindDiagramFallback {
		t.Fatalf("block 1 kind = %v, want fallback", fb.Kind)
	}
	if fb.Diagram.Raw != "graph TD\n  A-->B" {
		t.Errorf("fallback Raw = %q, want source unchanged", fb.Diagram.Raw)
	}
	if fb.Diagram.Reason == "" {
		t.Error("fallback Reason is empty")
	}
}

func TestSubstituter_Substitute_FallbackKeepsBoxDrawing(t *testing.T) {
	t.Parallel()

	root := diagramTree()
	_, err := NewSubstituter(NewGateway(nil)).Substitute(context.Background(), root)
	if err != nil {
		t.Fatalf("Substitute() unexpected error: %v", err)
	}

	ascii := root.Children[3].Children[0]
	if ascii.Kind != document.KindDiagramFallback {
		t.Fatalf("kind = %v, want fallback", ascii.Kind)
	}
	if ascii.Diagram.Raw != "┌──┐\n│ok│\n└──┘" {
		t.Errorf("Raw = %q", ascii.Diagram.Raw)
	}
}

func TestSubstituter_Substitute_PlaceholderWithoutPayload(t *testing.T) {
	t.Parallel()

	r := &mockRenderer{name: "m", kind: document.SourceMermaid, output: testSVG}
	root := document.NewDocument(
		&document.Node{Kind: document.KindDiagramPlaceholder},
		document.NewPlaceholder(document.SourceMermaid, "graph TD\n  A-->B"),
	)

	report, err := NewSubstituter(NewGateway([]Renderer{r})).Substitute(context.Background(), root)
	if err != nil {
		t.Fatalf("Substitute() unexpected error: %v", err)
	}
	if len(document.FindPlaceholders(root)) != 0 {
		t.Fatal("placeholder survived substitution")
	}

	fb := root.Children[0]
	if fb.Kind != document.KindDiagramFallback || fb.Diagram == nil {
		t.Fatalf("block 0 = %+v, want fallback with payload", fb)
	}
	if fb.Diagram.Raw != "" || fb.Diagram.Reason == "" || fb.Diagram.ID == "" {
		t.Errorf("fallback payload = %+v, want empty source with reason and id", fb.Diagram)
	}
	if root.Children[1].Kind != document.KindDiagramArtifact {
		t.Errorf("block 1 kind = %v, want artifact", root.Children[1].Kind)
	}
	if report.Fallbacks != 1 || report.Rendered != 1 {
		t.Errorf("Rendered/Fallbacks = %d/%d, want 1/1", report.Rendered, report.Fallbacks)
	}
	if len(report.Diagnostics) != 2 || report.Diagnostics[0].Kind != document.DiagMalformedNode || report.Diagnostics[0].Block != 0 {
		t.Errorf("diagnostics = %+v, want malformed_node for block 0", report.Diagnostics)
	}
	if r.calls() != 1 {
		t.Errorf("renderer called %d times, want 1", r.calls())
	}
}

func TestSubstituter_Substitute_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() (*document.Node, *Report) {
		g := NewGateway([]Renderer{
			&mockRenderer{name: "m", kind: document.SourceMermaid, err: errors.New("down")},
			&mockRenderer{name: "a", kind: document.SourceASCII, output: testSVG},
		})
		root := diagramTree()
		report, err := NewSubstituter(g).Substitute(context.Background(), root)
		if err != nil {
			t.Fatalf("Substitute() unexpected error: %v", err)
		}
		return root, report
	}

	root1, rep1 := run()
	root2, rep2 := run()
	if !reflect.DeepEqual(root1, root2) {
		t.Error("trees differ between identical runs")
	}
	if !reflect.DeepEqual(rep1, rep2) {
		t.Errorf("reports differ: %+v vs %+v", rep1, rep2)
	}
}

func TestSubstituter_Substitute_Parallel(t *testing.T) {
	t.Parallel()

	var blocks []*document.Node
	for i := 0; i < 12; i++ {
		blocks = append(blocks, document.NewPlaceholder(document.SourceASCII, string(rune('a'+i))+" -> x"))
	}
	root := document.NewDocument(blocks...)

	r := &mockRenderer{name: "a", kind: document.SourceASCII, output: testSVG}
	report, err := NewSubstituter(NewGateway([]Renderer{r}), WithParallelism(4)).Substitute(context.Background(), root)
	if err != nil {
		t.Fatalf("Substitute() unexpected error: %v", err)
	}
	if r.calls() != 12 {
		t.Errorf("renderer called %d times, want 12", r.calls())
	}
	for i, n := range root.Children {
		if n.Kind != document.KindDiagramArtifact {
			t.Fatalf("block %d kind = %v", i, n.Kind)
		}
		if want := string(rune('a'+i)) + " -> x"; n.Diagram.Raw != want {
			t.Errorf("block %d Raw = %q, want %q", i, n.Diagram.Raw, want)
		}
		if report.Diagnostics[i].Block != i {
			t.Errorf("diagnostic %d Block = %d", i, report.Diagnostics[i].Block)
		}
	}
}

func TestSubstituter_Substitute_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSubstituter(NewGateway(nil)).Substitute(ctx, diagramTree())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Substitute() error = %v, want context.Canceled", err)
	}
}

func TestDiagramID(t *testing.T) {
	t.Parallel()

	a := DiagramID(document.SourceMermaid, 0, "graph TD")
	if a != DiagramID(document.SourceMermaid, 0, "graph TD") {
		t.Error("DiagramID() not stable")
	}
	if a == DiagramID(document.SourceMermaid, 1, "graph TD") {
		t.Error("DiagramID() ignores ordinal")
	}
	if a == DiagramID(document.SourceASCII, 0, "graph TD") {
		t.Error("DiagramID() ignores kind")
	}
}
