package diagram

import (
	"context"
	"fmt"
	"os"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/process"
)

// Default binaries for the command renderers.
const (
	DefaultMMDCBin = "mmdc"
	DefaultDotBin  = "dot"
)

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// lookFunc resolves a binary on PATH.
type lookFunc func(name string) (string, error)

// CommandRenderer renders diagrams by running an external program.
type CommandRenderer struct {
	name   string
	kind   document.SourceKind
	bin    string
	run    runFunc
	look   lookFunc
	render func(ctx context.Context, c *CommandRenderer, source string) (string, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*CommandRenderer)(nil)

// NewMMDC creates the mermaid-cli renderer. An empty bin means "mmdc".
func NewMMDC(bin string) *CommandRenderer {
	if bin == "" {
		bin = DefaultMMDCBin
	}
	return &CommandRenderer{
		name:   "mmdc",
		kind:   document.SourceMermaid,
		bin:    bin,
		run:    process.Run,
		look:   process.Lookup,
		render: renderMMDC,
	}
}

// NewDot creates the graphviz renderer. An empty bin means "dot".
func NewDot(bin string) *CommandRenderer {
	if bin == "" {
		bin = DefaultDotBin
	}
	return &CommandRenderer{
		name:   "dot",
		kind:   document.SourceGraphviz,
		bin:    bin,
		run:    process.Run,
		look:   process.Lookup,
		render: renderDot,
	}
}

func (c *CommandRenderer) Name() string              { return c.name }
func (c *CommandRenderer) Kind() document.SourceKind { return c.kind }

func (c *CommandRenderer) Available() error {
	if _, err := c.look(c.bin); err != nil {
		return fmt.Errorf("%s not found on PATH", c.bin)
	}
	return nil
}

func (c *CommandRenderer) Render(ctx context.Context, source string) (string, error) {
	return c.render(ctx, c, source)
}

// renderDot pipes the source through dot -Tsvg.
func renderDot(ctx context.Context, c *CommandRenderer, source string) (string, error) {
	out, err := c.run(ctx, []byte(source), c.bin, "-Tsvg")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// puppeteerNoSandbox is passed to mmdc in containers, where Chrome's
// sandbox cannot start.
const puppeteerNoSandbox = `{"args":["--no-sandbox","--disable-setuid-sandbox"]}`

// renderMMDC writes the source to a temp file and lets mmdc write the SVG
// next to it.
func renderMMDC(ctx context.Context, c *CommandRenderer, source string) (string, error) {
	in, cleanupIn, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		return "", err
	}
	defer cleanupIn()

	out := in + ".svg"
	defer func() { _ = os.Remove(out) }()

	args := []string{"-i", in, "-o", out, "-b", "transparent", "-q"}
	if noSandbox() {
		cfg, cleanupCfg, err := fileutil.WriteTempFile(puppeteerNoSandbox, "json")
		if err != nil {
			return "", err
		}
		defer cleanupCfg()
		args = append(args, "-p", cfg)
	}

	if _, err := c.run(ctx, nil, c.bin, args...); err != nil {
		return "", err
	}

	svg, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("reading mmdc output: %w", err)
	}
	return string(svg), nil
}

func noSandbox() bool {
	return os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1"
}
