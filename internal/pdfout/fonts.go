package pdfout

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-md2doc/internal/layout"
)

type fontFile struct {
	family string
	style  string
	ttf    []byte
}

var fontFiles = []fontFile{
	{layout.FamilySans, "", goregular.TTF},
	{layout.FamilySans, "B", gobold.TTF},
	{layout.FamilySans, "I", goitalic.TTF},
	{layout.FamilySans, "BI", gobolditalic.TTF},
	{layout.FamilyMono, "", gomono.TTF},
	{layout.FamilyMono, "B", gomonobold.TTF},
	{layout.FamilyMono, "I", gomonoitalic.TTF},
	{layout.FamilyMono, "BI", gomonobolditalic.TTF},
}

// registerFonts adds every family and style to pdf.
func registerFonts(pdf *gofpdf.Fpdf) error {
	for _, ff := range fontFiles {
		pdf.AddUTF8FontFromBytes(ff.family, ff.style, ff.ttf)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrFont, err)
	}
	return nil
}

// setFont selects f, falling back to sans for unknown families.
func setFont(pdf *gofpdf.Fpdf, f layout.Font) {
	family := f.Family
	if family != layout.FamilyMono {
		family = layout.FamilySans
	}
	pdf.SetFont(family, f.Style(), f.Size)
}
