// Package browser owns one headless Chrome process and hands out pages
// scoped to a single call. The process starts lazily on first use.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2doc/internal/process"
)

// Sentinel errors for browser operations.
var (
	ErrConnect    = errors.New("browser connection failed")
	ErrPageCreate = errors.New("page creation failed")
	ErrClosed     = errors.New("browser closed")
)

// DefaultTimeout bounds one page operation when ctx has no deadline.
const DefaultTimeout = 30 * time.Second

// Browser is a lazily launched Chrome instance. Safe for concurrent use;
// each caller gets its own page.
type Browser struct {
	mu       sync.Mutex
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

// New returns a Browser that launches Chrome on first Page call.
func New(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Browser{timeout: timeout}
}

// LookPath returns the Chrome binary the launcher would use.
// ROD_BROWSER_BIN takes precedence over discovery.
func LookPath() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		if _, err := os.Stat(bin); err != nil {
			return bin, false
		}
		return bin, true
	}
	return launcher.LookPath()
}

// Available reports whether a browser can be launched without downloading.
func (b *Browser) Available() error {
	if _, ok := LookPath(); !ok {
		return errors.New("chrome not found (set ROD_BROWSER_BIN)")
	}
	return nil
}

// ensure lazily launches and connects. Caller holds mu.
func (b *Browser) ensure() error {
	if b.closed {
		return ErrClosed
	}
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	br := rod.New().ControlURL(u)
	if err := br.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	b.launcher = l
	b.browser = br
	return nil
}

// Page opens a blank page bound to ctx. The caller must call the returned
// release function.
func (b *Browser) Page(ctx context.Context) (*rod.Page, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.mu.Lock()
	err := b.ensure()
	br := b.browser
	b.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	page, err := br.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			_ = page.Close()
			return nil, nil, context.DeadlineExceeded
		}
	}

	release := func() { _ = page.Close() }
	return page.Context(ctx).Timeout(timeout), release, nil
}

// Close terminates the browser and its child processes. Safe to call twice.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.browser == nil {
		return nil
	}

	err := b.browser.Close()
	b.browser = nil

	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}
