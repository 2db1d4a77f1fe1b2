package md2doc

import (
	"errors"
	"testing"
)

func TestParseOutputKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    OutputKind
		wantErr error
	}{
		{in: "", want: Paginated},
		{in: "pdf", want: Paginated},
		{in: "Paginated", want: Paginated},
		{in: "docx", want: Structured},
		{in: "structured", want: Structured},
		{in: " HTML ", want: Preview},
		{in: "preview", want: Preview},
		{in: "odt", wantErr: ErrInvalidOutputKind},
		{in: "both", wantErr: ErrInvalidOutputKind},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutputKind(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseOutputKind(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputKind_Encoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind OutputKind
		ext  string
		mime string
	}{
		{kind: Paginated, ext: "pdf", mime: "application/pdf"},
		{kind: Structured, ext: "docx", mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{kind: Preview, ext: "html", mime: "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			if got := tt.kind.Extension(); got != tt.ext {
				t.Errorf("Extension() = %q, want %q", got, tt.ext)
			}
			if got := tt.kind.ContentType(); got != tt.mime {
				t.Errorf("ContentType() = %q, want %q", got, tt.mime)
			}
		})
	}
}

func TestResult_Fallbacks(t *testing.T) {
	t.Parallel()

	res := &Result{Diagnostics: []Diagnostic{
		{Kind: DiagRendered},
		{Kind: DiagRendererExhaustion},
		{Kind: DiagMeasurementDegraded},
		{Kind: DiagRendererExhaustion},
	}}
	if got := res.Fallbacks(); got != 2 {
		t.Errorf("Fallbacks() = %d, want 2", got)
	}
}
