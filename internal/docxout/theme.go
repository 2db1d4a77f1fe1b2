package docxout

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/fumiama/go-docx"
)

const (
	themeName  = "md2doc"
	stylesFile = "word/styles.xml"
	maxHeading = 6
)

// HeadingStyle is the paragraph style ID used for a heading of level.
func HeadingStyle(level int) string {
	return fmt.Sprintf("Heading%d", min(max(level, 1), maxHeading))
}

// theme is the stock go-docx template with Heading1..Heading6 added to
// styles.xml, so headings show up in Word's navigation pane.
var theme = sync.OnceValues(func() (fs.FS, error) {
	out := fstest.MapFS{}
	for _, name := range docx.DefaultTemplateFilesList {
		data, err := fs.ReadFile(docx.TemplateXMLFS, "xml/default/"+name)
		if err != nil {
			return nil, err
		}
		if name == stylesFile {
			if data, err = withHeadingStyles(data); err != nil {
				return nil, err
			}
		}
		out["xml/"+themeName+"/"+name] = &fstest.MapFile{Data: data}
	}
	return out, nil
})

func withHeadingStyles(styles []byte) ([]byte, error) {
	end := []byte("</w:styles>")
	i := bytes.LastIndex(styles, end)
	if i < 0 {
		return nil, fmt.Errorf("%s: missing closing tag", stylesFile)
	}
	var b strings.Builder
	for level := 1; level <= maxHeading; level++ {
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s">`+
			`<w:name w:val="heading %d"/><w:basedOn w:val="a"/><w:next w:val="a"/>`+
			`<w:uiPriority w:val="9"/><w:qFormat/>`+
			`<w:pPr><w:keepNext/><w:keepLines/><w:outlineLvl w:val="%d"/></w:pPr></w:style>`,
			HeadingStyle(level), level, level-1)
	}
	out := make([]byte, 0, len(styles)+b.Len())
	out = append(out, styles[:i]...)
	out = append(out, b.String()...)
	return append(out, styles[i:]...), nil
}

func newDocument() (*docx.Docx, error) {
	tmpl, err := theme()
	if err != nil {
		return nil, fmt.Errorf("%w: template: %v", ErrWrite, err)
	}
	return docx.New().UseTemplate(themeName, docx.DefaultTemplateFilesList, tmpl), nil
}
