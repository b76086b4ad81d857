// Package vision provides an OpenCV implementation of pipeline.Recognizer.
//
// It follows the native pipeline step for step with OpenCV primitives: box
// blur, fixed threshold, external contours, polygon approximation,
// perspective warp, inverted Otsu threshold and normalized correlation
// coefficient template matching. Corner ordering, corner regions and label
// selection are shared with the native pipeline.
//
// The backend needs cgo and OpenCV and is only compiled with the gocv build
// tag. Without it NewOpenCVRecognizer returns ErrBackendUnavailable.
package vision

import "errors"

// ErrBackendUnavailable is returned when the binary was built without OpenCV.
var ErrBackendUnavailable = errors.New("opencv backend not compiled in (build with -tags gocv)")
