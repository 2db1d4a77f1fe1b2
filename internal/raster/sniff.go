package raster

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fumiama/imgsz"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps image files read from disk.
const MaxImageSize = 20 << 20

// Info describes an image payload.
type Info struct {
	MIME   string
	Format string // gofpdf image type: "PNG", "JPG", "GIF", or "SVG"
	Width  int
	Height int
}

// IsVector reports whether the payload must be rasterized before embedding.
func (i Info) IsVector() bool { return i.Format == "SVG" }

// Sniff identifies data by content, not by file name, and reads its pixel
// size from the header. SVG payloads report zero size.
func Sniff(data []byte) (Info, error) {
	mt := mimetype.Detect(data)

	var info Info
	switch {
	case mt.Is("image/png"):
		info = Info{MIME: "image/png", Format: "PNG"}
	case mt.Is("image/jpeg"):
		info = Info{MIME: "image/jpeg", Format: "JPG"}
	case mt.Is("image/gif"):
		info = Info{MIME: "image/gif", Format: "GIF"}
	case mt.Is("image/svg+xml"):
		return Info{MIME: "image/svg+xml", Format: "SVG"}, nil
	default:
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupported, mt.String())
	}

	size, _, err := imgsz.DecodeSize(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: reading %s header: %v", ErrUnsupported, info.Format, err)
	}
	info.Width, info.Height = size.Width, size.Height
	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, info.Width, info.Height)
	}
	return info, nil
}

// ReadImage loads and sniffs an image file. Errors name no path, so they
// are safe to hand back to whoever supplied the reference.
func ReadImage(path string) ([]byte, Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Info{}, ErrImageMissing
		}
		return nil, Info{}, ErrImageUnreadable
	}
	if st.IsDir() {
		return nil, Info{}, ErrImageUnreadable
	}
	if st.Size() > MaxImageSize {
		return nil, Info{}, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, st.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, ErrImageUnreadable
	}
	info, err := Sniff(data)
	if err != nil {
		return nil, Info{}, err
	}
	return data, info, nil
}
