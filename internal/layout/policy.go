package layout

// Line spacing factors applied to the font size.
const (
	bodyLeading = 1.4
	monoLeading = 1.25
)

// Font sizes, in points.
const (
	BodySize    = 11
	CodeSize    = 9
	CompactSize = 7
	TableSize   = 9
	TitleSize   = 22
	MetaSize    = 11
	NoteSize    = 9
)

var headingSizes = [...]float64{20, 16, 14, 12, 11, 11}

// HeadingSize returns the point size of a heading level, clamped to 1-6.
func HeadingSize(level int) float64 {
	switch {
	case level < 1:
		level = 1
	case level > len(headingSizes):
		level = len(headingSizes)
	}
	return headingSizes[level-1]
}

// Spacing and geometry, in millimetres.
const (
	ParagraphGap      = 3.0
	HeadingGapBefore  = 4.0
	HeadingGapAfter   = 2.0
	BlockGap          = 4.0
	CodePadding       = 2.0
	ListIndent        = 6.0
	QuoteIndent       = 6.0
	QuoteRuleWidth    = 0.8
	CellPaddingX      = 1.5
	CellPaddingY      = 0.75
	TableRowMinHeight = 6.0
	RuleHeight        = 4.0
	TitleGapAfter     = 8.0
	BorderWidth       = 0.2
	FallbackBorder    = 0.5
)

// RasterDPI is the resolution diagrams are rasterized at.
const RasterDPI = 150

// Colors that only the paginated output uses. Shared fills live in
// internal/document.
var (
	TextColor      = [3]int{0x24, 0x29, 0x2f}
	MutedColor     = [3]int{0x57, 0x60, 0x6a}
	FallbackStroke = [3]int{0xd4, 0xa0, 0x17}
	RuleColor      = [3]int{0xd0, 0xd7, 0xde}
)
