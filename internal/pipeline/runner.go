package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/pkg/logger"
	"github.com/ironsheep/cardscan/pkg/metrics"
)

// Status of one processed file.
const (
	StatusOK         = metrics.StatusOK
	StatusUnreadable = metrics.StatusUnreadable
	StatusFailed     = metrics.StatusFailed
)

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many files are processed at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFailFast makes the first unreadable or failed file abort the run.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithAnnotator sets how detections are drawn. Nil disables drawing; scenes
// are then saved unchanged.
func WithAnnotator(a *imaging.Annotator) Option {
	return func(r *Runner) {
		r.annotator = a
	}
}

// WithMetrics records per-file outcomes on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the logger. The run id is attached to every record.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// Runner processes directories of scene images.
type Runner struct {
	recognizer Recognizer
	annotator  *imaging.Annotator
	metrics    *metrics.Manager
	logger     logger.Logger
	runID      string
	workers    int
	failFast   bool
}

// NewRunner creates a Runner around rec.
func NewRunner(rec Recognizer, opts ...Option) *Runner {
	r := &Runner{
		recognizer: rec,
		logger:     logger.Nop(),
		runID:      uuid.NewString(),
		workers:    1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.String("run_id", r.runID))
	return r
}

// RunID identifies this runner's batch in logs and metrics.
func (r *Runner) RunID() string {
	return r.runID
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	Detections []Detection   `json:"detections,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Err        error         `json:"-"`
}

// Summary describes a finished batch.
type Summary struct {
	RunID      string       `json:"run_id"`
	Files      []FileResult `json:"files"`
	Processed  int          `json:"processed"`
	Unreadable int          `json:"unreadable"`
	Failed     int          `json:"failed"`
	Cards      int          `json:"cards"`
}

func (s *Summary) add(fr FileResult) {
	switch fr.Status {
	case StatusOK:
		s.Processed++
		s.Cards += len(fr.Detections)
	case StatusUnreadable:
		s.Unreadable++
	case StatusFailed:
		s.Failed++
	}
}

// RunDir recognizes every regular file of in, in name order, and writes the
// annotated scenes under the same names to out, which is created if needed.
//
// Bad files are logged and counted, and the run moves on; with fail-fast the
// run stops instead and the error wraps ErrRunAborted and the cause. The
// summary only lists files that were processed.
func (r *Runner) RunDir(ctx context.Context, in, out string) (*Summary, error) {
	names, err := listFiles(in)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	r.logger.Info(ctx, "batch started",
		logger.String("input", in),
		logger.String("output", out),
		logger.Int("files", len(names)),
		logger.Int("workers", r.workers),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]FileResult, len(names))
	done := make([]bool, len(names))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		abortErr error
		once     sync.Once
	)
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fr := r.ProcessFile(runCtx, filepath.Join(in, names[i]), filepath.Join(out, names[i]))
				results[i], done[i] = fr, true
				if fr.Err != nil && r.failFast && fr.Status != "" {
					once.Do(func() {
						abortErr = fmt.Errorf("%w: %s: %w", ErrRunAborted, fr.Name, fr.Err)
						cancel()
					})
				}
			}
		}()
	}

feed:
	for i := range names {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{RunID: r.runID, Files: make([]FileResult, 0, len(names))}
	for i, fr := range results {
		if done[i] && fr.Status != "" {
			summary.Files = append(summary.Files, fr)
			summary.add(fr)
		}
	}

	r.logger.Info(ctx, "batch finished",
		logger.Int("processed", summary.Processed),
		logger.Int("unreadable", summary.Unreadable),
		logger.Int("failed", summary.Failed),
		logger.Int("cards", summary.Cards),
	)

	if abortErr != nil {
		return summary, abortErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// ProcessFile recognizes the scene at inPath and saves the annotated copy to
// outPath. A cancelled ctx yields a result with an empty Status.
func (r *Runner) ProcessFile(ctx context.Context, inPath, outPath string) FileResult {
	start := time.Now()
	fr := FileResult{Name: filepath.Base(inPath)}
	log := r.logger.With(logger.String("file", fr.Name))

	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	finish := func(status string, err error) FileResult {
		fr.Status, fr.Err, fr.Duration = status, err, time.Since(start)
		if r.metrics != nil {
			r.metrics.ObserveImage(status, fr.Duration)
		}
		return fr
	}

	scene, err := imaging.LoadScene(inPath)
	if err != nil {
		log.Warn(ctx, "skipping unreadable image", logger.Error(err))
		return finish(StatusUnreadable, err)
	}

	dets, err := r.recognizer.Recognize(ctx, scene)
	if err != nil {
		if ctx.Err() != nil {
			fr.Err = err
			return fr
		}
		log.Error(ctx, "recognition failed", logger.Error(err))
		return finish(StatusFailed, err)
	}
	fr.Detections = dets

	if err := imaging.Save(r.annotate(scene, dets), outPath); err != nil {
		log.Error(ctx, "saving annotated image failed", logger.Error(err))
		return finish(StatusFailed, err)
	}

	if r.metrics != nil {
		r.metrics.AddCards(len(dets))
		for _, d := range dets {
			if !d.Rank.Known() {
				r.metrics.IncUnknown(matching.Rank.String())
			}
			if !d.Suit.Known() {
				r.metrics.IncUnknown(matching.Suit.String())
			}
		}
	}

	fr = finish(StatusOK, nil)
	labels := make([]string, len(dets))
	for i, d := range dets {
		labels[i] = d.Label
	}
	log.Debug(ctx, "image processed",
		logger.Int("cards", len(dets)),
		logger.Any("labels", labels),
		logger.Duration("elapsed", fr.Duration),
	)
	return fr
}

func (r *Runner) annotate(scene *imaging.Scene, dets []Detection) image.Image {
	if r.annotator == nil {
		return scene.Color
	}
	return r.annotator.Annotate(scene.Color, Marks(dets))
}

// Marks converts detections into annotation marks.
func Marks(dets []Detection) []imaging.Mark {
	marks := make([]imaging.Mark, len(dets))
	for i, d := range dets {
		outline := make([]image.Point, len(d.Outline))
		for j, p := range d.Outline {
			outline[j] = p.ImagePoint()
		}
		marks[i] = imaging.Mark{
			Outline: outline,
			Anchor:  d.Anchor.ImagePoint(),
			Label:   d.Label,
		}
	}
	return marks
}

// listFiles returns the names of the regular files in dir, sorted.
func listFiles(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
