//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/flatten"
	"github.com/ironsheep/cardscan/internal/geometry"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/internal/pipeline"
)

// Available reports whether the OpenCV backend is compiled in.
func Available() bool { return true }

type cvTemplate struct {
	label string
	name  string
	mat   gocv.Mat
}

// OpenCVRecognizer recognizes cards with OpenCV. Call Close to release the
// template matrices.
type OpenCVRecognizer struct {
	opts  detection.Options
	floor float64
	ranks []cvTemplate
	suits []cvTemplate
}

var _ pipeline.Recognizer = (*OpenCVRecognizer)(nil)

// NewOpenCVRecognizer uploads the templates of set and returns a recognizer
// tuned by opts.
func NewOpenCVRecognizer(set *matching.TemplateSet, opts detection.Options, floor float64) (*OpenCVRecognizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if set == nil || len(set.Ranks) == 0 || len(set.Suits) == 0 {
		return nil, matching.ErrNoTemplates
	}

	r := &OpenCVRecognizer{opts: opts, floor: floor}
	var err error
	if r.ranks, err = uploadTemplates(set.Ranks); err != nil {
		return nil, err
	}
	if r.suits, err = uploadTemplates(set.Suits); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func uploadTemplates(ts []*matching.Template) ([]cvTemplate, error) {
	out := make([]cvTemplate, 0, len(ts))
	for _, t := range ts {
		mat, err := gocv.ImageGrayToMatGray(t.Image())
		if err != nil {
			for _, c := range out {
				c.mat.Close()
			}
			return nil, fmt.Errorf("template %s %s: %w", t.Kind, t.Name(), err)
		}
		out = append(out, cvTemplate{label: t.Label, name: t.Name(), mat: mat})
	}
	return out, nil
}

// Close releases the template matrices.
func (r *OpenCVRecognizer) Close() error {
	for _, ts := range [][]cvTemplate{r.ranks, r.suits} {
		for _, t := range ts {
			t.mat.Close()
		}
	}
	r.ranks, r.suits = nil, nil
	return nil
}

// Recognize finds and labels the cards of scene.
func (r *OpenCVRecognizer) Recognize(ctx context.Context, scene *imaging.Scene) ([]pipeline.Detection, error) {
	if scene == nil {
		return nil, pipeline.ErrNilScene
	}

	gray, err := gocv.ImageGrayToMatGray(scene.Gray)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	bgr, err := gocv.ImageToMatRGB(scene.Color)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	if r.opts.BlurSize >= 2 {
		gocv.Blur(gray, &blurred, image.Pt(r.opts.BlurSize, r.opts.BlurSize))
	} else {
		gray.CopyTo(&blurred)
	}

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(blurred, &bin, float32(r.opts.BinaryThreshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	type measured struct {
		idx  int
		area float64
	}
	order := make([]measured, contours.Size())
	for i := range order {
		order[i] = measured{idx: i, area: gocv.ContourArea(contours.At(i))}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].area > order[j].area })

	sceneArea := gray.Cols() * gray.Rows()
	minArea := float64(sceneArea / r.opts.MinAreaDivisor)
	maxArea := float64(sceneArea / r.opts.MaxAreaDivisor)
	size := image.Pt(gray.Cols(), gray.Rows())

	dets := make([]pipeline.Detection, 0)
	for _, m := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.area <= minArea || m.area >= maxArea {
			continue
		}

		c := contours.At(m.idx)
		peri := gocv.ArcLength(c, true)
		approx := gocv.ApproxPolyDP(c, r.opts.ApproxEpsilon*peri, true)
		vertices := toPoints(approx)
		approx.Close()
		if len(vertices) != 4 {
			continue
		}

		cand, err := r.candidate(bgr, c, vertices, m.area, peri)
		if errors.Is(err, geometry.ErrDegenerate) {
			continue
		}
		if err != nil {
			return nil, err
		}

		matches, err := r.matchWarp(cand.Warp)
		if err != nil {
			return nil, err
		}
		dets = append(dets, pipeline.NewDetection(len(dets), cand, matches, size))
	}
	return dets, nil
}

func (r *OpenCVRecognizer) candidate(bgr gocv.Mat, c gocv.PointVector, vertices []geometry.Point, area, peri float64) (*detection.Candidate, error) {
	box := gocv.BoundingRect(c)

	fine := gocv.ApproxPolyDP(c, r.opts.CornerEpsilon*peri, true)
	corners := toPoints(fine)
	fine.Close()
	if len(corners) != 4 {
		corners = vertices
	}

	quad, regime, err := geometry.OrderCornersSlice(corners, box.Dx(), box.Dy())
	if err != nil {
		return nil, err
	}

	warp, err := r.canonical(bgr, quad)
	if err != nil {
		return nil, err
	}

	return &detection.Candidate{
		Contour:   detection.Contour(toPoints(c)),
		Box:       box,
		Width:     box.Dx(),
		Height:    box.Dy(),
		Vertices:  vertices,
		Corners:   corners,
		Quad:      quad,
		Regime:    regime,
		Center:    geometry.Centroid(corners),
		Area:      area,
		Perimeter: peri,
		Warp:      warp,
	}, nil
}

// canonical warps quad to 200x300, binarizes with inverted Otsu and rotates
// the result by 180 degrees.
func (r *OpenCVRecognizer) canonical(bgr gocv.Mat, quad geometry.Quad) (*image.Gray, error) {
	w, h := flatten.CanonicalWidth, flatten.CanonicalHeight

	srcPts := make([]gocv.Point2f, 0, 4)
	for _, p := range quad.Points() {
		srcPts = append(srcPts, gocv.Point2f{X: float32(p.X), Y: float32(p.Y)})
	}
	src := gocv.NewPoint2fVectorFromPoints(srcPts)
	defer src.Close()
	dst := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: 0, Y: 0},
		{X: float32(w - 1), Y: 0},
		{X: float32(w - 1), Y: float32(h - 1)},
		{X: 0, Y: float32(h - 1)},
	})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform2f(src, dst)
	defer m.Close()
	if m.Empty() {
		return nil, geometry.ErrDegenerate
	}

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(bgr, &warped, m, image.Pt(w, h))

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(warped, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	rotated := gocv.NewMat()
	defer rotated.Close()
	gocv.Flip(bin, &rotated, -1)

	img, err := rotated.ToImage()
	if err != nil {
		return nil, err
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("canonical image: unexpected type %T", img)
	}
	return g, nil
}

func (r *OpenCVRecognizer) matchWarp(warp *image.Gray) (pipeline.CornerMatches, error) {
	primary, secondary, err := pipeline.CornerRegions(warp)
	if err != nil {
		return pipeline.CornerMatches{}, err
	}

	pm, err := gocv.ImageGrayToMatGray(primary)
	if err != nil {
		return pipeline.CornerMatches{}, err
	}
	defer pm.Close()
	sm, err := gocv.ImageGrayToMatGray(secondary)
	if err != nil {
		return pipeline.CornerMatches{}, err
	}
	defer sm.Close()

	return pipeline.CornerMatches{
		PrimarySuit:   r.match(pm, r.suits),
		PrimaryRank:   r.match(pm, r.ranks),
		SecondarySuit: r.match(sm, r.suits),
		SecondaryRank: r.match(sm, r.ranks),
	}, nil
}

// match keeps the first template whose best placement beats both the floor
// and every earlier template.
func (r *OpenCVRecognizer) match(region gocv.Mat, ts []cvTemplate) matching.Result {
	res := matching.UnknownResult()
	best := 0.0

	mask := gocv.NewMat()
	defer mask.Close()
	surface := gocv.NewMat()
	defer surface.Close()

	for _, t := range ts {
		if t.mat.Cols() > region.Cols() || t.mat.Rows() > region.Rows() {
			continue
		}
		gocv.MatchTemplate(region, t.mat, &surface, gocv.TmCcoeffNormed, mask)
		_, maxVal, _, _ := gocv.MinMaxLoc(surface)
		score := float64(maxVal)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		score = math.Max(-1, math.Min(1, score))
		if score > r.floor && score > best {
			best = score
			res = matching.Result{Label: t.label, Score: score, Template: t.name}
		}
	}
	return res
}

func toPoints(pv gocv.PointVector) []geometry.Point {
	pts := pv.ToPoints()
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = geometry.Pt(p.X, p.Y)
	}
	return out
}
