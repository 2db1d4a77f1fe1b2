package sanitize_test

import (
	"reflect"
	"testing"

	"github.com/alnah/go-md2doc/internal/sanitize"
)

// ---------------------------------------------------------------------------
// TestText - Run sanitization
// ---------------------------------------------------------------------------

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain ascii", in: "hello", want: "hello"},
		{name: "cyrillic kept", in: "Отчёт", want: "Отчёт"},
		{name: "box drawing kept", in: "┌──┐", want: "┌──┐"},
		{name: "emoji replaced", in: "ok 🚀 go", want: "ok   go"},
		{name: "tab expanded", in: "a\tb", want: "a    b"},
		{name: "control dropped", in: "a\x00b\x07c", want: "abc"},
		{name: "carriage return dropped", in: "a\r\nb", want: "a\nb"},
		{name: "decomposed composed", in: "e\u0301", want: "\u00e9"},
		{name: "private use dropped", in: "a\uE000b", want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitize.Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	t.Parallel()

	in := "Мир\t🚀 ┌─┐ é"
	once := sanitize.Text(in)
	if twice := sanitize.Text(once); twice != once {
		t.Errorf("Text() not idempotent: %q then %q", once, twice)
	}
}

// ---------------------------------------------------------------------------
// TestLines - Line splitting
// ---------------------------------------------------------------------------

func TestLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{""}},
		{name: "trailing newline", in: "a\nb\n", want: []string{"a", "b"}},
		{name: "leading spaces kept", in: "  +--+\n  |  |", want: []string{"  +--+", "  |  |"}},
		{name: "inner blank line kept", in: "a\n\nb", want: []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitize.Lines(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
