//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/internal/pipeline"
)

// Available reports whether the OpenCV backend is compiled in.
func Available() bool { return false }

// OpenCVRecognizer is a placeholder when built without the gocv tag.
type OpenCVRecognizer struct{}

// NewOpenCVRecognizer always fails without the gocv build tag.
func NewOpenCVRecognizer(set *matching.TemplateSet, opts detection.Options, floor float64) (*OpenCVRecognizer, error) {
	return nil, ErrBackendUnavailable
}

// Recognize returns ErrBackendUnavailable.
func (r *OpenCVRecognizer) Recognize(ctx context.Context, scene *imaging.Scene) ([]pipeline.Detection, error) {
	return nil, ErrBackendUnavailable
}

// Close is a no-op.
func (r *OpenCVRecognizer) Close() error { return nil }
