package matching

import "errors"

var (
	// ErrTemplateMissing is returned when a template file is absent or cannot be decoded.
	ErrTemplateMissing = errors.New("template missing")

	// ErrTemplateTooLarge is returned when a template does not fit inside a corner region.
	ErrTemplateTooLarge = errors.New("template larger than corner region")

	// ErrEmptyTemplate is returned for a template with no pixels.
	ErrEmptyTemplate = errors.New("empty template")

	// ErrNoTemplates is returned when a matcher would have nothing to match against.
	ErrNoTemplates = errors.New("no templates")
)
