package raster

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// defaultFontSize applies to text with no font-size in scope.
const defaultFontSize = 16.0

// Vector rasterizes in pure Go. oksvg draws shapes and paths but ignores
// text, so text elements are drawn afterwards with a monospace TrueType
// face on the same coordinate system.
type Vector struct{}

// Compile-time interface implementation check.
var _ Rasterizer = (*Vector)(nil)

// NewVector creates the pure Go rasterizer.
func NewVector() *Vector { return &Vector{} }

func (v *Vector) Name() string { return "oksvg" }

func (v *Vector) Rasterize(ctx context.Context, markup string, widthPx, heightPx int) ([]byte, error) {
	if err := ValidateSize(widthPx, heightPx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		vb.W, vb.H = float64(widthPx), float64(heightPx)
	}

	img := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(widthPx), float64(heightPx))
	scanner := rasterx.NewScannerGV(widthPx, heightPx, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(widthPx, heightPx, scanner), 1.0)

	texts, err := collectText(markup)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	sx := float64(widthPx) / vb.W
	sy := float64(heightPx) / vb.H
	if err := drawText(img, texts, vb.X, vb.Y, sx, sy); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// textRun is one text element in SVG user units.
type textRun struct {
	x, y   float64
	size   float64
	fill   color.Color
	anchor string
	text   string
}

// textStyle is the inherited part of an element's presentation.
type textStyle struct {
	size   float64
	fill   color.Color
	anchor string
}

// collectText walks the markup and returns every text element with its
// inherited font size, fill and anchor.
func collectText(markup string) ([]textRun, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	stack := []textStyle{{size: defaultFontSize, fill: color.Black, anchor: "start"}}
	var runs []textRun
	var cur *textRun
	depthInText := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return runs, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			st := inherit(stack[len(stack)-1], t.Attr)
			stack = append(stack, st)
			if t.Name.Local == "text" && cur == nil {
				cur = &textRun{
					x:      attrFloat(t.Attr, "x"),
					y:      attrFloat(t.Attr, "y"),
					size:   st.size,
					fill:   st.fill,
					anchor: st.anchor,
				}
				depthInText = 1
			} else if cur != nil {
				depthInText++
			}
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			if cur != nil {
				depthInText--
				if depthInText == 0 {
					if strings.TrimSpace(cur.text) != "" {
						runs = append(runs, *cur)
					}
					cur = nil
				}
			}
		case xml.CharData:
			if cur != nil {
				cur.text += string(t)
			}
		}
	}
}

// inherit applies presentation attributes and inline style on top of the
// parent's values.
func inherit(parent textStyle, attrs []xml.Attr) textStyle {
	st := parent
	apply := func(name, value string) {
		value = strings.TrimSpace(value)
		switch name {
		case "font-size":
			if v, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64); err == nil && v > 0 {
				st.size = v
			}
		case "fill":
			if c, ok := parseColor(value); ok {
				st.fill = c
			}
		case "text-anchor":
			st.anchor = value
		}
	}
	for _, a := range attrs {
		if a.Name.Local == "style" {
			for _, decl := range strings.Split(a.Value, ";") {
				if k, v, ok := strings.Cut(decl, ":"); ok {
					apply(strings.TrimSpace(k), v)
				}
			}
			continue
		}
		apply(a.Name.Local, a.Value)
	}
	return st
}

func attrFloat(attrs []xml.Attr, name string) float64 {
	for _, a := range attrs {
		if a.Name.Local == name {
			// Lists like x="1 2 3" position glyphs individually; the first
			// value positions the run.
			f := strings.Fields(strings.ReplaceAll(a.Value, ",", " "))
			if len(f) == 0 {
				return 0
			}
			v, _ := strconv.ParseFloat(strings.TrimSuffix(f[0], "px"), 64)
			return v
		}
	}
	return 0
}

// parseColor understands #rgb, #rrggbb and a few names.
func parseColor(s string) (color.Color, bool) {
	switch strings.ToLower(s) {
	case "black":
		return color.Black, true
	case "white":
		return color.White, true
	case "none", "transparent":
		return color.Transparent, true
	}
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func monoTTF() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// drawText paints runs onto img. (ox, oy) is the viewBox origin; sx and sy
// scale user units to pixels.
func drawText(img draw.Image, runs []textRun, ox, oy, sx, sy float64) error {
	if len(runs) == 0 {
		return nil
	}
	f, err := monoTTF()
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}

	faces := map[float64]font.Face{}
	defer func() {
		for _, face := range faces {
			_ = face.Close()
		}
	}()

	for _, r := range runs {
		size := r.size * sy
		face, ok := faces[size]
		if !ok {
			face = truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
			faces[size] = face
		}

		d := &font.Drawer{Dst: img, Src: image.NewUniform(r.fill), Face: face}
		text := strings.TrimRight(r.text, "\n")
		x := (r.x - ox) * sx
		switch r.anchor {
		case "middle":
			x -= float64(d.MeasureString(text)) / 64 / 2
		case "end":
			x -= float64(d.MeasureString(text)) / 64
		}
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6((r.y - oy) * sy * 64),
		}
		d.DrawString(text)
	}
	return nil
}
