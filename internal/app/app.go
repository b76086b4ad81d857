// Package app wires configuration into a ready recognizer, batch runner and
// MCP server.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ironsheep/cardscan/internal/config"
	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/internal/pipeline"
	"github.com/ironsheep/cardscan/internal/server"
	"github.com/ironsheep/cardscan/internal/vision"
	"github.com/ironsheep/cardscan/pkg/logger"
	"github.com/ironsheep/cardscan/pkg/metrics"
)

// App holds the long-lived components built from one Config.
type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Templates *matching.TemplateSet
	Pipeline  *pipeline.Pipeline
	Annotator *imaging.Annotator
	Metrics   *metrics.Manager
	RunID     string

	// Recognizer is Pipeline, or the OpenCV backend when configured.
	Recognizer pipeline.Recognizer

	closer io.Closer
}

// InitLogging installs the global logger on w with cfg's format and level
// and returns it.
func InitLogging(cfg *config.Config, w io.Writer) (logger.Logger, error) {
	if err := logger.InitWriter(w, cfg.LogFormat); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, err
	}
	return logger.Get(), nil
}

// DetectionOptions maps the extractor settings of cfg.
func DetectionOptions(cfg *config.Config) detection.Options {
	return detection.Options{
		BlurSize:        cfg.BlurSize,
		BinaryThreshold: uint8(cfg.BinaryThreshold),
		MinAreaDivisor:  cfg.MinAreaDivisor,
		MaxAreaDivisor:  cfg.MaxAreaDivisor,
		ApproxEpsilon:   cfg.ApproxEpsilon,
		CornerEpsilon:   cfg.CornerEpsilon,
	}
}

// NewMetrics builds the metrics manager described by cfg, labelling every
// series with runID.
func NewMetrics(cfg *config.Config, runID string) *metrics.Manager {
	registry := prometheus.NewRegistry()
	if cfg.MetricsRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return metrics.NewManager(
		metrics.WithPrometheusRegistry(registry),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithConstLabels(map[string]string{"run_id": runID}),
	)
}

// New validates cfg, loads the template library once and builds every
// component. log may be nil to discard output.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	a := &App{
		Config: cfg,
		Logger: log,
		RunID:  uuid.NewString(),
	}

	var err error
	a.Templates, err = matching.LoadStore(cfg.TemplateDir, matching.StoreOptions{
		Ext:     cfg.TemplateExt,
		Lenient: cfg.LenientTemplates,
		Logger:  log.Named("templates"),
	})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	a.Metrics = NewMetrics(cfg, a.RunID)
	a.Metrics.SetTemplates(matching.Rank.String(), len(a.Templates.Ranks))
	a.Metrics.SetTemplates(matching.Suit.String(), len(a.Templates.Suits))
	log.Info(ctx, "templates loaded",
		logger.String("dir", cfg.TemplateDir),
		logger.Int("ranks", len(a.Templates.Ranks)),
		logger.Int("suits", len(a.Templates.Suits)))

	opts := DetectionOptions(cfg)
	extractor, err := detection.NewExtractor(opts)
	if err != nil {
		return nil, err
	}
	a.Pipeline, err = pipeline.New(extractor, a.Templates, cfg.MinConfidence)
	if err != nil {
		return nil, err
	}
	a.Recognizer = a.Pipeline

	if cfg.Backend == config.BackendOpenCV {
		cv, err := vision.NewOpenCVRecognizer(a.Templates, opts, cfg.MinConfidence)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", cfg.Backend, err)
		}
		a.Recognizer = cv
		a.closer = cv
	}
	log.Debug(ctx, "recognizer ready", logger.String("backend", cfg.Backend))

	a.Annotator, err = imaging.NewAnnotator(cfg.OutlineColor, cfg.AnnotateColor, cfg.LabelScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return a, nil
}

// Runner returns a batch runner using the app's recognizer and settings.
func (a *App) Runner() *pipeline.Runner {
	return pipeline.NewRunner(a.Recognizer,
		pipeline.WithWorkers(a.Config.Workers),
		pipeline.WithFailFast(a.Config.FailFast),
		pipeline.WithAnnotator(a.Annotator),
		pipeline.WithMetrics(a.Metrics),
		pipeline.WithLogger(a.Logger.Named("runner")),
		pipeline.WithRunID(a.RunID),
	)
}

// RunBatch recognizes every image in the in directory, writes annotated
// copies to out and, when configured, dumps the metrics textfile.
func (a *App) RunBatch(ctx context.Context, in, out string) (*pipeline.Summary, error) {
	sum, err := a.Runner().RunDir(ctx, in, out)
	if a.Config.MetricsFile != "" {
		if werr := a.Metrics.WriteTextfile(a.Config.MetricsFile); werr != nil {
			a.Logger.Error(ctx, "failed to write metrics", logger.Error(werr))
			if err == nil {
				err = werr
			}
		} else {
			a.Logger.Debug(ctx, "metrics written", logger.String("path", a.Config.MetricsFile))
		}
	}
	return sum, err
}

// Server returns an MCP server over the native pipeline.
func (a *App) Server(in io.Reader, out io.Writer, version string) *server.Server {
	return server.New(a.Pipeline,
		server.WithIO(in, out),
		server.WithLogger(a.Logger.Named("mcp")),
		server.WithAnnotator(a.Annotator),
		server.WithVersion(version),
	)
}

// Close releases backend resources.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
