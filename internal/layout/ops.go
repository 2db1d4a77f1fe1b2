package layout

import "github.com/alnah/go-md2doc/internal/document"

// OpKind is the kind of a draw operation.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
	OpImage
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpRect:
		return "rect"
	case OpLine:
		return "line"
	case OpImage:
		return "image"
	}
	return "unknown"
}

// Op is one draw operation. X, Y, W and H are millimetres.
//
// Text draws Text in Font inside the box X,Y,W,H (one line, left aligned).
// Rect fills and/or strokes the box. Line draws from X,Y to X+W,Y+H.
// Image draws a bitmap scaled to the box.
type Op struct {
	Kind OpKind
	X, Y float64
	W, H float64

	Text   string
	Font   Font
	Strike bool

	Color     [3]int
	Fill      [3]int
	Filled    bool
	Stroked   bool
	LineWidth float64

	Image     []byte
	ImageType string // "PNG", "JPG" or "GIF"
	ImageID   string
}

// Page is the ordered operations of one page. Used is the height placed
// through the cursor, never more than the content height.
type Page struct {
	Ops  []Op
	Used float64
}

// Document is the paginated result.
type Document struct {
	Spec        PageSpec
	Pages       []*Page
	Degraded    bool
	Diagnostics []document.Diagnostic
}

// Texts returns the text of every text op, in drawing order.
func (d *Document) Texts() []string {
	var out []string
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				out = append(out, op.Text)
			}
		}
	}
	return out
}
