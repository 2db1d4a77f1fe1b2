package md2doc

import (
	"strings"
	"testing"
	"unicode"
)

// ---------------------------------------------------------------------------
// TestFilename - Title to file name law
// ---------------------------------------------------------------------------

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		kind  OutputKind
		want  string
	}{
		{title: "Отчёт: Q1", kind: Paginated, want: "отчёт_q1.pdf"},
		{title: "Отчёт: Q1", kind: Structured, want: "отчёт_q1.docx"},
		{title: "Release Notes v2.1", kind: Preview, want: "release_notes_v2_1.html"},
		{title: "  --Plan--  ", kind: Paginated, want: "plan.pdf"},
		{title: "ИТОГИ 2026 года", kind: Paginated, want: "итоги_2026_года.pdf"},
		{title: "a/b\\c", kind: Paginated, want: "a_b_c.pdf"},
		{title: "", kind: Paginated, want: "document.pdf"},
		{title: ":::", kind: Structured, want: "document.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.title+"/"+string(tt.kind), func(t *testing.T) {
			t.Parallel()

			if got := Filename(tt.title, tt.kind); got != tt.want {
				t.Errorf("Filename(%q, %q) = %q, want %q", tt.title, tt.kind, got, tt.want)
			}
		})
	}
}

func TestFileStem_Alphabet(t *testing.T) {
	t.Parallel()

	titles := []string{
		"Отчёт: Q1",
		"Ünïcödé — title?!",
		"tab\tand\nnewline",
		strings.Repeat("Длинный заголовок ", 20),
	}

	for _, title := range titles {
		stem := FileStem(title)
		if strings.HasPrefix(stem, "_") || strings.HasSuffix(stem, "_") || strings.Contains(stem, "__") {
			t.Errorf("FileStem(%q) = %q has stray underscores", title, stem)
		}
		if n := len([]rune(stem)); n > maxStemRunes {
			t.Errorf("FileStem(%q) has %d runes, max %d", title, n, maxStemRunes)
		}
		for _, r := range stem {
			if r != '_' && !unicode.IsDigit(r) && !(unicode.IsLetter(r) && !unicode.IsUpper(r)) {
				t.Errorf("FileStem(%q) = %q contains %q", title, stem, r)
			}
		}
	}
}
