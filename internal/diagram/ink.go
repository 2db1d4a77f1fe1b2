package diagram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alnah/go-md2doc/internal/document"
)

// DefaultInkURL is the public mermaid.ink service.
const DefaultInkURL = "https://mermaid.ink"

// maxInkResponse caps the SVG body read from the service.
const maxInkResponse = 8 << 20

// Ink renders mermaid through the mermaid.ink HTTP API.
type Ink struct {
	baseURL string
	client  *http.Client
}

// Compile-time interface implementation check.
var _ Renderer = (*Ink)(nil)

// NewInk creates the mermaid.ink renderer. Empty baseURL means
// DefaultInkURL; nil client gets a 20s timeout client.
func NewInk(baseURL string, client *http.Client) *Ink {
	if baseURL == "" {
		baseURL = DefaultInkURL
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Ink{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *Ink) Name() string              { return "ink" }
func (r *Ink) Kind() document.SourceKind { return document.SourceMermaid }
func (r *Ink) Available() error          { return nil }

// Render fetches /svg/<base64url(source)>.
func (r *Ink) Render(ctx context.Context, source string) (string, error) {
	u := r.baseURL + "/svg/" + base64.URLEncoding.EncodeToString([]byte(source))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInkResponse))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, firstLine(strings.TrimSpace(string(body))))
	}

	if mt := mimetype.Detect(body); !mt.Is("image/svg+xml") {
		return "", errors.New("response is " + mt.String() + ", not SVG")
	}
	return string(body), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
