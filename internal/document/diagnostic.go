package document

import "fmt"

// DiagnosticKind classifies a non-fatal event recorded during conversion.
type DiagnosticKind string

const (
	// DiagRendered records a diagram converted by a renderer.
	DiagRendered DiagnosticKind = "rendered"
	// DiagRendererExhaustion records a diagram no renderer could convert.
	DiagRendererExhaustion DiagnosticKind = "renderer_exhaustion"
	// DiagMeasurementDegraded records layout falling back to width estimates.
	DiagMeasurementDegraded DiagnosticKind = "measurement_degraded"
	// DiagMalformedNode records a node skipped because of its shape.
	DiagMalformedNode DiagnosticKind = "malformed_node"
	// DiagRasterization records a diagram that could not be turned into a bitmap.
	DiagRasterization DiagnosticKind = "rasterization_failed"
	// DiagImageUnavailable records an image reference that could not be embedded.
	DiagImageUnavailable DiagnosticKind = "image_unavailable"
	// DiagFrontMatter records a front matter block that could not be decoded.
	DiagFrontMatter DiagnosticKind = "front_matter_invalid"
)

// Diagnostic is one observable event. Block is the zero-based ordinal of the
// diagram it concerns, or -1.
type Diagnostic struct {
	Kind     DiagnosticKind
	Block    int
	Source   SourceKind
	Renderer string
	Message  string
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Block >= 0 {
		s += fmt.Sprintf(" #%d", d.Block)
	}
	if d.Source != "" {
		s += " " + string(d.Source)
	}
	if d.Renderer != "" {
		s += " via " + d.Renderer
	}
	if d.Message != "" {
		s += ": " + d.Message
	}
	return s
}

// Note returns a diagnostic not tied to a diagram.
func Note(kind DiagnosticKind, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Block: -1, Message: fmt.Sprintf(format, args...)}
}
