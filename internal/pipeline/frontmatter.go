package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// frontMatterPattern matches a leading YAML block delimited by --- lines.
var frontMatterPattern = regexp.MustCompile(`(?s)\A---[ \t]*\n(.*?)\n---[ \t]*(?:\n|\z)`)

// FrontMatter holds the fields read from a leading YAML block.
type FrontMatter struct {
	Title  string
	Author string
	Date   string
	Order  float64
	Extra  map[string]any
}

// ExtractFrontMatter splits a leading YAML block from the body.
// Returns a nil FrontMatter when the source has none. When the block exists
// but cannot be decoded, the body without the block is still returned along
// with an error wrapping ErrFrontMatter.
func ExtractFrontMatter(content string) (string, *FrontMatter, error) {
	loc := frontMatterPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, nil, nil
	}
	raw := content[loc[2]:loc[3]]
	body := content[loc[1]:]

	if strings.TrimSpace(raw) == "" {
		return body, &FrontMatter{}, nil
	}

	data, err := yamlutil.DecodeFrontMatter(raw)
	if err != nil {
		return body, nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}

	fm := &FrontMatter{Extra: map[string]any{}}
	for k, v := range data {
		switch strings.ToLower(k) {
		case "title":
			fm.Title = scalarString(v)
		case "author":
			fm.Author = scalarString(v)
		case "date":
			fm.Date = scalarString(v)
		case "order":
			fm.Order = scalarFloat(v)
		default:
			fm.Extra[k] = v
		}
	}
	return body, fm, nil
}

// MetadataOptions controls metadata defaulting.
type MetadataOptions struct {
	SourceName string    // file name the markdown came from, may be empty
	DateFormat string    // dateutil format for the default date
	Now        time.Time // injected clock
}

// ResolveMetadata fills the fields missing from front matter.
// Title falls back to the source name stem, then to document.DefaultTitle.
// Date falls back to today; "auto" values are resolved through dateutil.
func ResolveMetadata(fm *FrontMatter, opts MetadataOptions) document.Metadata {
	var md document.Metadata
	if fm != nil {
		md = document.Metadata{
			Title:  strings.TrimSpace(fm.Title),
			Author: strings.TrimSpace(fm.Author),
			Date:   strings.TrimSpace(fm.Date),
			Order:  fm.Order,
			Extra:  fm.Extra,
		}
	}

	if md.Title == "" {
		md.Title = document.TitleFromSource(opts.SourceName)
	}

	format := opts.DateFormat
	if format == "" {
		format = dateutil.DefaultDateFormat
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if md.Date == "" {
		md.Date = "auto:" + format
	}
	if d, err := dateutil.ResolveDate(md.Date, now); err == nil {
		md.Date = d
	}
	return md
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("02.01.2006")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func scalarFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}
