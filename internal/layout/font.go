package layout

// Font families known to every measurer and writer.
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Font describes how a run of text is drawn. Size is in points.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Style returns the gofpdf-style code: "", "B", "I" or "BI".
func (f Font) Style() string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

// Mono reports whether f is the monospace family.
func (f Font) Mono() bool { return f.Family == FamilyMono }

// LineHeight is the height of one line of f, in millimetres.
func (f Font) LineHeight() float64 {
	factor := bodyLeading
	if f.Mono() {
		factor = monoLeading
	}
	return f.Size * PtToMM * factor
}

func sans(size float64) Font { return Font{Family: FamilySans, Size: size} }

func mono(size float64) Font { return Font{Family: FamilyMono, Size: size} }

func (f Font) bold() Font {
	f.Bold = true
	return f
}

func (f Font) italic() Font {
	f.Italic = true
	return f
}
