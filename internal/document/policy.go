package document

import "strconv"

// Bullet is the marker for every unordered list item.
const Bullet = "•"

// ListMarker returns the prefix for the item at zero-based index.
// Ordered items are numbered by position starting at 1.
func ListMarker(ordered bool, index int) string {
	if !ordered {
		return Bullet
	}
	return strconv.Itoa(index+1) + "."
}

// Shade is the background treatment of a table row.
type Shade int

const (
	ShadeNone Shade = iota
	ShadeHeader
	ShadeStripe
)

// RowShading returns the shading of a table row. bodyIndex counts body rows
// from zero; every second body row is striped.
func RowShading(bodyIndex int, header bool) Shade {
	if header {
		return ShadeHeader
	}
	if bodyIndex%2 == 1 {
		return ShadeStripe
	}
	return ShadeNone
}

// IsHeaderRow reports whether every cell of row is a header cell.
func IsHeaderRow(row *Node) bool {
	if row == nil || len(row.Children) == 0 {
		return false
	}
	for _, c := range row.Children {
		if !c.Header {
			return false
		}
	}
	return true
}

// Colors used by both engines, as RGB.
var (
	HeaderFill   = [3]int{0xf6, 0xf8, 0xfa}
	StripeFill   = [3]int{0xf9, 0xf9, 0xf9}
	CodeFill     = [3]int{0xf6, 0xf8, 0xfa}
	FallbackFill = [3]int{0xff, 0xf8, 0xe1}
	QuoteRule    = [3]int{0xd0, 0xd7, 0xde}
	BorderColor  = [3]int{0xdd, 0xdd, 0xdd}
)

// Hex formats an RGB triple as RRGGBB.
func Hex(c [3]int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 6)
	for i, v := range c {
		b[2*i] = digits[(v>>4)&0xf]
		b[2*i+1] = digits[v&0xf]
	}
	return string(b)
}
