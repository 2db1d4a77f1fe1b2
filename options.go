package md2doc

import (
	"time"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// Built-in renderer names, in default priority order per source kind.
const (
	RendererRod  = "rod"  // mermaid in headless Chrome
	RendererMMDC = "mmdc" // mermaid-cli subprocess
	RendererInk  = "ink"  // mermaid.ink HTTP service
	RendererDot  = "dot"  // graphviz subprocess
)

// DefaultRendererOrder is the built-in chain used when none is configured.
var DefaultRendererOrder = []string{RendererRod, RendererMMDC, RendererInk, RendererDot}

// RendererSettings selects and locates the built-in diagram renderers.
type RendererSettings struct {
	Order   []string // names in try order (empty = DefaultRendererOrder)
	MMDCBin string   // empty = "mmdc" on PATH
	DotBin  string   // empty = "dot" on PATH
	InkURL  string   // empty = https://mermaid.ink
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout        time.Duration
	diagramTimeout time.Duration
	page           layout.PageSpec
	renderers      []Renderer
	builtins       RendererSettings
	rasterizers    []Rasterizer
	measurer       Measurer
	measurerSet    bool
	assetPath      string
	asciiMode      pipeline.ASCIIMode
	parallelism    int
	dateFormat     string
	author         string
	titlePage      bool
	now            func() time.Time
}

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:    defaultTimeout,
		page:       layout.A4,
		asciiMode:  pipeline.ASCIIImage,
		dateFormat: dateutil.DefaultDateFormat,
		titlePage:  true,
		now:        time.Now,
	}
}

// WithTimeout bounds one Convert call.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2doc: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithDiagramTimeout bounds each renderer attempt. Zero leaves only the
// conversion timeout.
func WithDiagramTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.diagramTimeout = d
	}
}

// WithPageSpec sets the page geometry for both document kinds.
func WithPageSpec(spec PageSpec) Option {
	return func(c *Converter) {
		c.cfg.page = spec
	}
}

// WithRenderers replaces the built-in renderers. Renderers keep their
// relative order as fallback priority within a source kind. With no
// arguments every diagram falls back to its source text.
func WithRenderers(r ...Renderer) Option {
	return func(c *Converter) {
		c.cfg.renderers = append([]Renderer{}, r...)
	}
}

// WithRendererSettings chooses and orders the built-in renderers.
// Ignored when WithRenderers is given.
func WithRendererSettings(s RendererSettings) Option {
	return func(c *Converter) {
		c.cfg.builtins = s
	}
}

// WithRasterizers replaces the SVG rasterizer chain. Rasterizers are tried
// in order.
func WithRasterizers(r ...Rasterizer) Option {
	return func(c *Converter) {
		c.cfg.rasterizers = append([]Rasterizer{}, r...)
	}
}

// WithMeasurer sets the text measurer for paginated output. A nil measurer
// makes every paginated conversion use width estimates.
func WithMeasurer(m Measurer) Option {
	return func(c *Converter) {
		c.cfg.measurer = m
		c.cfg.measurerSet = true
	}
}

// WithAssetPath overrides embedded assets with files under dir.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithASCIIMode selects how ASCII-art code blocks are handled.
func WithASCIIMode(mode ASCIIMode) Option {
	return func(c *Converter) {
		c.cfg.asciiMode = mode
	}
}

// WithDiagramParallelism renders up to n diagrams at once.
func WithDiagramParallelism(n int) Option {
	return func(c *Converter) {
		c.cfg.parallelism = n
	}
}

// WithDateFormat sets the format of the default metadata date.
func WithDateFormat(format string) Option {
	return func(c *Converter) {
		c.cfg.dateFormat = format
	}
}

// WithDefaultAuthor sets the author used when front matter has none.
func WithDefaultAuthor(name string) Option {
	return func(c *Converter) {
		c.cfg.author = name
	}
}

// WithTitlePage toggles the title block at the top of the first page.
func WithTitlePage(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.titlePage = enabled
	}
}

// withClock injects the clock used for default dates and PDF timestamps.
func withClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.cfg.now = now
	}
}
