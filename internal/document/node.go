package document

import "fmt"

// Kind identifies the variant of a Node.
type Kind int

// Node kinds. KindDocument is the root of every tree.
const (
	KindDocument Kind = iota
	KindHeading
	KindParagraph
	KindCodeBlock
	KindList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindBlockquote
	KindImage
	KindDiagramPlaceholder
	KindDiagramArtifact
	KindDiagramFallback
	KindRule
	KindText
)

var kindNames = [...]string{
	KindDocument:           "document",
	KindHeading:            "heading",
	KindParagraph:          "paragraph",
	KindCodeBlock:          "code_block",
	KindList:               "list",
	KindListItem:           "list_item",
	KindTable:              "table",
	KindTableRow:           "table_row",
	KindTableCell:          "table_cell",
	KindBlockquote:         "blockquote",
	KindImage:              "image",
	KindDiagramPlaceholder: "diagram_placeholder",
	KindDiagramArtifact:    "diagram_artifact",
	KindDiagramFallback:    "diagram_fallback",
	KindRule:               "rule",
	KindText:               "text",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsBlock reports whether nodes of this kind occupy their own vertical space.
// Text runs and images nested in paragraphs are inline.
func (k Kind) IsBlock() bool {
	switch k {
	case KindText, KindImage:
		return false
	}
	return true
}

// SourceKind is the language of a diagram source block.
type SourceKind string

// Supported diagram source kinds.
const (
	SourceMermaid  SourceKind = "mermaid"
	SourceASCII    SourceKind = "ascii"
	SourceGraphviz SourceKind = "graphviz"
)

// Diagram is the payload shared by placeholder, artifact and fallback nodes.
type Diagram struct {
	Source SourceKind
	Raw    string // original source, byte for byte

	// Set once substituted.
	ID       string
	Markup   string  // SVG markup (artifact only)
	Width    float64 // intrinsic width in SVG user units
	Height   float64 // intrinsic height in SVG user units
	Renderer string  // renderer that produced Markup
	Reason   string  // why rendering failed (fallback only)
}

// FallbackCaption is the note printed above a diagram shown as source.
func (d *Diagram) FallbackCaption() string {
	if d.Source == "" {
		return "Диаграмма не отрисована"
	}
	return fmt.Sprintf("Диаграмма %s не отрисована", d.Source)
}

// Node is one element of the document tree.
type Node struct {
	Kind     Kind
	Children []*Node

	Level    int    // heading level 1-6
	Language string // code block info string
	Compact  bool   // code block drawn with the compact font (ASCII art kept as text)
	Ordered  bool   // list
	Header   bool   // table cell belongs to the header row

	// Text run.
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Strike bool

	// Image.
	Src string
	Alt string

	Diagram *Diagram
}

// NewText returns a plain text run.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// NewParagraph returns a paragraph holding a single plain run.
func NewParagraph(s string) *Node {
	return &Node{Kind: KindParagraph, Children: []*Node{NewText(s)}}
}

// NewHeading returns a heading with a single plain run. Level is clamped to 1-6.
func NewHeading(level int, s string) *Node {
	return &Node{Kind: KindHeading, Level: clampLevel(level), Children: []*Node{NewText(s)}}
}

// NewCodeBlock returns a code block. Text holds the code verbatim.
func NewCodeBlock(language, code string) *Node {
	return &Node{Kind: KindCodeBlock, Language: language, Text: code}
}

// NewPlaceholder returns a diagram placeholder awaiting substitution.
func NewPlaceholder(kind SourceKind, raw string) *Node {
	return &Node{Kind: KindDiagramPlaceholder, Diagram: &Diagram{Source: kind, Raw: raw}}
}

// NewList returns a list whose items each hold one paragraph.
func NewList(ordered bool, items ...string) *Node {
	l := &Node{Kind: KindList, Ordered: ordered}
	for _, it := range items {
		l.Children = append(l.Children, &Node{Kind: KindListItem, Children: []*Node{NewParagraph(it)}})
	}
	return l
}

// NewTable builds a table from rows of cell text. The first row is the header.
func NewTable(rows ...[]string) *Node {
	t := &Node{Kind: KindTable}
	for i, r := range rows {
		row := &Node{Kind: KindTableRow}
		for _, c := range r {
			row.Children = append(row.Children, &Node{
				Kind:     KindTableCell,
				Header:   i == 0,
				Children: []*Node{NewText(c)},
			})
		}
		t.Children = append(t.Children, row)
	}
	return t
}

// NewDocument returns a root node holding the given blocks.
func NewDocument(blocks ...*Node) *Node {
	return &Node{Kind: KindDocument, Children: blocks}
}

func clampLevel(l int) int {
	if l < 1 {
		return 1
	}
	if l > 6 {
		return 6
	}
	return l
}
