package structured

import (
	"strings"

	"github.com/alnah/go-md2doc/internal/document"
)

// BlockKind is the kind of an exported block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockTable:
		return "table"
	case BlockImage:
		return "image"
	}
	return "unknown"
}

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft    Align = "start"
	AlignCenter  Align = "center"
	AlignJustify Align = "both"
)

// Style describes how a block is drawn. Sizes are points, indents are
// millimetres.
type Style struct {
	Level  int // heading level, 0 for body text
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
	Align  Align

	IndentLeft  float64
	IndentRight float64
	FirstLine   float64
	Hanging     float64
	SpaceBefore float64 // points

	Shaded bool
	Fill   [3]int
}

// Run is a span of text sharing one inline style.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Mono   bool
	Strike bool
}

// Cell is one table cell.
type Cell struct {
	Runs []Run
}

// Row is one table row.
type Row struct {
	Cells  []Cell
	Header bool
	Shade  document.Shade
}

// Image is a bitmap with its display size in millimetres.
type Image struct {
	Data   []byte
	Format string
	Width  float64
	Height float64
	ID     string
}

// Block is one exported element.
type Block struct {
	Kind  BlockKind
	Style Style
	Runs  []Run
	Rows  []Row
	Image *Image
}

// Text joins the text of every run of b. Table cells are separated by
// tabs and rows by newlines.
func (b Block) Text() string {
	var sb strings.Builder
	writeRuns(&sb, b.Runs)
	for i, row := range b.Rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, c := range row.Cells {
			if j > 0 {
				sb.WriteByte('\t')
			}
			writeRuns(&sb, c.Runs)
		}
	}
	return sb.String()
}

func writeRuns(sb *strings.Builder, runs []Run) {
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
}

// Accumulator is the ordered, append-only output of Export.
type Accumulator struct {
	blocks      []Block
	Diagnostics []document.Diagnostic
}

// Append adds b after every block appended so far.
func (a *Accumulator) Append(b Block) {
	a.blocks = append(a.blocks, b)
}

// Blocks returns a copy of the blocks in order.
func (a *Accumulator) Blocks() []Block {
	return append([]Block(nil), a.blocks...)
}

// Len returns the number of blocks.
func (a *Accumulator) Len() int { return len(a.blocks) }
