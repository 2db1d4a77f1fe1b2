package raster

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Pager hands out browser pages scoped to one call.
type Pager interface {
	Page(ctx context.Context) (*rod.Page, func(), error)
	Available() error
}

var xmlProlog = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)

const hostPage = `<!DOCTYPE html><html><head><meta charset="utf-8"><style>
html,body{margin:0;padding:0;background:#ffffff;overflow:hidden}
svg{display:block;width:%dpx !important;height:%dpx !important;max-width:none !important}
</style></head><body>%s</body></html>`

// Browser rasterizes by screenshotting the SVG in headless Chrome. It
// renders everything the browser renders, HTML labels included.
type Browser struct {
	pager Pager
}

// Compile-time interface implementation check.
var _ Rasterizer = (*Browser)(nil)

// NewBrowser creates the screenshot rasterizer.
func NewBrowser(pager Pager) *Browser {
	return &Browser{pager: pager}
}

func (b *Browser) Name() string { return "rod" }

func (b *Browser) Rasterize(ctx context.Context, markup string, widthPx, heightPx int) ([]byte, error) {
	if err := ValidateSize(widthPx, heightPx); err != nil {
		return nil, err
	}
	if err := b.pager.Available(); err != nil {
		return nil, err
	}

	page, release, err := b.pager.Page(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             widthPx,
		Height:            heightPx,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("setting viewport: %w", err)
	}

	doc := fmt.Sprintf(hostPage, widthPx, heightPx, xmlProlog.ReplaceAllString(markup, ""))
	if err := page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("loading svg: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for svg: %w", err)
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  float64(widthPx),
			Height: float64(heightPx),
			Scale:  1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}
