package htmlout

import "errors"

var (
	ErrTemplate = errors.New("preview template unusable")
	ErrRender   = errors.New("preview render failed")
)
