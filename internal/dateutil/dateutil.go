// Package dateutil resolves the date shown in document title blocks.
//
// Dates are written with token patterns rather than Go layouts:
//
//	YYYY YY       year
//	MMMM MMM      month name, full or short
//	MM M          month number, padded or not
//	DD D          day, padded or not
//	[text]        literal text
//
// A front matter date of "auto" or "auto:PATTERN" resolves to today.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable date pattern.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds pattern length.
const MaxDateFormatLength = 50

// DefaultDateFormat renders 19.10.2026.
const DefaultDateFormat = "DD.MM.YYYY"

type token int

const (
	tokLiteral token = iota
	tokYear4
	tokYear2
	tokMonthName
	tokMonthShort
	tokMonth2
	tokMonth
	tokDay2
	tokDay
)

// tokens are tried longest first.
var tokens = []struct {
	text string
	tok  token
}{
	{"YYYY", tokYear4},
	{"MMMM", tokMonthName},
	{"MMM", tokMonthShort},
	{"YY", tokYear2},
	{"MM", tokMonth2},
	{"DD", tokDay2},
	{"M", tokMonth},
	{"D", tokDay},
}

// Locale selects month names.
type Locale int

const (
	English Locale = iota
	// Russian uses genitive month names, as in "19 октября 2026".
	Russian
)

var monthNames = map[Locale][12]string{
	English: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	Russian: {"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря"},
}

var shortNames = map[Locale][12]string{
	English: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	Russian: {"янв", "фев", "мар", "апр", "мая", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"},
}

type preset struct {
	pattern string
	locale  Locale
}

// presets are the named shortcuts accepted after "auto:".
var presets = map[string]preset{
	"iso":      {"YYYY-MM-DD", English},
	"ru":       {"DD.MM.YYYY", Russian},
	"ru-long":  {"D MMMM YYYY", Russian},
	"european": {"DD/MM/YYYY", English},
	"us":       {"MM/DD/YYYY", English},
	"long":     {"MMMM D, YYYY", English},
}

type part struct {
	tok     token
	literal string
}

// Layout is a compiled date pattern.
type Layout struct {
	parts  []part
	locale Locale
}

// Compile parses pattern. The pattern may also be a preset name.
func Compile(pattern string) (Layout, error) {
	if p, ok := presets[strings.ToLower(pattern)]; ok {
		return compile(p.pattern, p.locale)
	}
	return compile(pattern, English)
}

func compile(pattern string, locale Locale) (Layout, error) {
	if pattern == "" {
		return Layout{}, fmt.Errorf("%w: pattern cannot be empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return Layout{}, fmt.Errorf("%w: pattern exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	l := Layout{locale: locale}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			l.parts = append(l.parts, part{tok: tokLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			lit.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(pattern[i:], t.text) {
				flush()
				l.parts = append(l.parts, part{tok: t.tok})
				i += len(t.text)
				matched = true
				break
			}
		}
		if !matched {
			lit.WriteByte(pattern[i])
			i++
		}
	}
	flush()
	return l, nil
}

// WithLocale returns a copy of l using locale for month names.
func (l Layout) WithLocale(locale Locale) Layout {
	l.locale = locale
	return l
}

// Format renders t.
func (l Layout) Format(t time.Time) string {
	var b strings.Builder
	m := int(t.Month()) - 1
	for _, p := range l.parts {
		switch p.tok {
		case tokLiteral:
			b.WriteString(p.literal)
		case tokYear4:
			fmt.Fprintf(&b, "%04d", t.Year())
		case tokYear2:
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case tokMonthName:
			b.WriteString(monthNames[l.locale][m])
		case tokMonthShort:
			b.WriteString(shortNames[l.locale][m])
		case tokMonth2:
			fmt.Fprintf(&b, "%02d", m+1)
		case tokMonth:
			b.WriteString(strconv.Itoa(m + 1))
		case tokDay2:
			fmt.Fprintf(&b, "%02d", t.Day())
		case tokDay:
			b.WriteString(strconv.Itoa(t.Day()))
		}
	}
	return b.String()
}

// ResolveDate expands "auto" and "auto:PATTERN" to the date of now.
// PATTERN may be a preset name (iso, ru, ru-long, european, us, long).
// Any other value is returned unchanged.
func ResolveDate(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	pattern := DefaultDateFormat
	switch {
	case lower == "auto":
	case strings.HasPrefix(lower, "auto:"):
		pattern = value[len("auto:"):]
		if pattern == "" {
			return "", fmt.Errorf("%w: pattern cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
	default:
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:PATTERN\"", ErrInvalidDateFormat, value)
	}

	l, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return l.Format(now), nil
}
