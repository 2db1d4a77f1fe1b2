package docxout

import "errors"

var (
	ErrWrite = errors.New("DOCX write failed")
	ErrEmpty = errors.New("nothing to write")
)
