package md2doc

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// fallbackStem names files whose title has no letters or digits.
const fallbackStem = "document"

// maxStemRunes caps the file name length before the extension.
const maxStemRunes = 100

var lower = cases.Lower(language.Und)

// Filename derives the output file name from a document title.
// Letters and digits are kept and lowercased; every other run of characters
// becomes a single underscore. "Отчёт: Q1" gives "отчёт_q1.pdf".
func Filename(title string, kind OutputKind) string {
	return FileStem(title) + "." + kind.Extension()
}

// FileStem is Filename without the extension.
func FileStem(title string) string {
	s := lower.String(norm.NFC.String(title))

	var b strings.Builder
	pending := false
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pending = true
			continue
		}
		sep := pending && b.Len() > 0
		need := 1
		if sep {
			need++
		}
		if n+need > maxStemRunes {
			break
		}
		if sep {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		n += need
		pending = false
	}

	if b.Len() == 0 {
		return fallbackStem
	}
	return b.String()
}
