package vision

import "errors"

var (
	ErrTemplateTooLarge  = errors.New("template is larger than the search area")
	ErrEmptyImage        = errors.New("image has no pixels")
	ErrInvalidConfidence = errors.New("confidence must be in (0, 1]")
)
