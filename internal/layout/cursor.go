package layout

// epsilon absorbs float drift when comparing accumulated heights.
const epsilon = 1e-6

// PageCursor tracks the vertical write position. It only moves forward:
// Advance moves down the page and Break starts the next one.
type PageCursor struct {
	PageIndex  int
	Y          float64
	PageHeight float64
	PageWidth  float64
	Margin     float64
}

// NewPageCursor places a cursor at the top margin of the first page.
func NewPageCursor(spec PageSpec) *PageCursor {
	return &PageCursor{
		Y:          spec.Margin,
		PageHeight: spec.Height,
		PageWidth:  spec.Width,
		Margin:     spec.Margin,
	}
}

// Top is the y coordinate of the first content line.
func (c *PageCursor) Top() float64 { return c.Margin }

// Bottom is the y coordinate below which nothing is placed.
func (c *PageCursor) Bottom() float64 { return c.PageHeight - c.Margin }

// ContentHeight is the usable height of one page.
func (c *PageCursor) ContentHeight() float64 { return c.Bottom() - c.Top() }

// Remaining is the height left on the current page.
func (c *PageCursor) Remaining() float64 { return c.Bottom() - c.Y }

// AtTop reports whether nothing has been placed on the current page.
func (c *PageCursor) AtTop() bool { return c.Y <= c.Top()+epsilon }

// Fits reports whether h more millimetres fit on the current page.
func (c *PageCursor) Fits(h float64) bool { return h <= c.Remaining()+epsilon }

// Advance moves the cursor down by h and returns the y it started from.
func (c *PageCursor) Advance(h float64) float64 {
	y := c.Y
	if h > 0 {
		c.Y += h
	}
	return y
}

// Break starts a new page.
func (c *PageCursor) Break() {
	c.PageIndex++
	c.Y = c.Top()
}
