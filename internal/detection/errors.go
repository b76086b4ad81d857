package detection

import "errors"

var (
	// ErrNilImage is returned when Extract is called without a grayscale scene.
	ErrNilImage = errors.New("nil scene image")

	// ErrSizeMismatch is returned when the color and grayscale scenes differ in size.
	ErrSizeMismatch = errors.New("color and grayscale scenes differ in size")

	// ErrInvalidOptions is returned for extractor options that cannot work.
	ErrInvalidOptions = errors.New("invalid extractor options")
)
