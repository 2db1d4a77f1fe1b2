package diagram

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Size used when an SVG declares neither a viewBox nor absolute dimensions.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// unitScale converts SVG length units to CSS pixels.
var unitScale = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"mm": 96.0 / 25.4,
	"cm": 96.0 / 2.54,
	"in": 96,
}

// IntrinsicSize reads the dimensions of the root svg element. The viewBox
// wins over width and height since renderers often emit width="100%".
func IntrinsicSize(markup string) (float64, float64, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return 0, 0, fmt.Errorf("%w: no root element", ErrInvalidSVG)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return 0, 0, fmt.Errorf("%w: root is <%s>", ErrInvalidSVG, se.Name.Local)
		}
		w, h := sizeFromAttrs(se.Attr)
		return w, h, nil
	}
}

func sizeFromAttrs(attrs []xml.Attr) (float64, float64) {
	var viewBox, width, height string
	for _, a := range attrs {
		switch a.Name.Local {
		case "viewBox", "viewbox":
			viewBox = a.Value
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		}
	}

	if w, h, ok := parseViewBox(viewBox); ok {
		return w, h
	}

	w, wok := parseLength(width)
	h, hok := parseLength(height)
	switch {
	case wok && hok:
		return w, h
	case wok:
		return w, w * DefaultHeight / DefaultWidth
	case hok:
		return h * DefaultWidth / DefaultHeight, h
	}
	return DefaultWidth, DefaultHeight
}

func parseViewBox(s string) (float64, float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, err1 := strconv.ParseFloat(fields[2], 64)
	h, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// parseLength accepts absolute lengths only; percentages are ignored.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z') {
		i--
	}
	scale, ok := unitScale[s[i:]]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * scale, true
}
