// Package config defines cardscan configuration and its loading.
//
// Conventions:
// - New(ctx) returns a Config filled with defaults.
// - Load(ctx) layers a YAML file, a .env file and CARDSCAN_* variables on top.
// - Validate reports every problem as ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Recognition backends.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Backend picks the recognizer: native or opencv.
	Backend string `koanf:"backend"`

	// TemplateDir holds the rank/ and suit/ template folders.
	TemplateDir string `koanf:"template_dir"`

	// TemplateExt is the template file extension, including the dot.
	TemplateExt string `koanf:"template_ext"`

	// LenientTemplates skips missing templates instead of failing.
	LenientTemplates bool `koanf:"lenient_templates"`

	// BlurSize is the box blur side applied before thresholding.
	BlurSize int `koanf:"blur_size"`

	// BinaryThreshold is the gray level above which a pixel is foreground.
	BinaryThreshold int `koanf:"binary_threshold"`

	// MinAreaDivisor and MaxAreaDivisor bound card area to
	// (scene/min, scene/max).
	MinAreaDivisor int `koanf:"min_area_divisor"`
	MaxAreaDivisor int `koanf:"max_area_divisor"`

	// ApproxEpsilon and CornerEpsilon are polygon tolerances as a fraction
	// of the contour perimeter.
	ApproxEpsilon float64 `koanf:"approx_epsilon"`
	CornerEpsilon float64 `koanf:"corner_epsilon"`

	// MinConfidence is the similarity floor a template must exceed.
	MinConfidence float64 `koanf:"min_confidence"`

	// Workers is the number of images processed concurrently.
	Workers int `koanf:"workers"`

	// FailFast aborts a batch on the first unreadable image.
	FailFast bool `koanf:"fail_fast"`

	// AnnotateColor and OutlineColor are hex colors for labels and outlines.
	AnnotateColor string `koanf:"annotate_color"`
	OutlineColor  string `koanf:"outline_color"`

	// LabelScale is the pixel size of one bitmap font cell.
	LabelScale int `koanf:"label_scale"`

	// MetricsFile, when set, receives a Prometheus textfile after a batch.
	MetricsFile string `koanf:"metrics_file"`

	// MetricsEnabled turns metric recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsBuckets overrides the image duration histogram buckets, in
	// seconds. Empty keeps the built-in buckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsRuntime adds Go runtime and process collectors to the dump.
	MetricsRuntime bool `koanf:"metrics_runtime"`
}

// New creates a Config with defaults. Context is accepted first to match the
// Load signature and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Backend:          BackendNative,
		TemplateDir:      "template",
		TemplateExt:      ".JPG",
		LenientTemplates: false,
		BlurSize:         5,
		BinaryThreshold:  128,
		MinAreaDivisor:   30,
		MaxAreaDivisor:   5,
		ApproxEpsilon:    0.05,
		CornerEpsilon:    0.01,
		MinConfidence:    0.5,
		Workers:          1,
		FailFast:         false,
		AnnotateColor:    "#ff0000",
		OutlineColor:     "#00ff00",
		LabelScale:       2,
		MetricsFile:      "",
		MetricsEnabled:   true,
		MetricsNamespace: "cardscan",
		MetricsRuntime:   false,
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		add("log_format %q", c.LogFormat)
	}
	switch c.Backend {
	case BackendNative, BackendOpenCV:
	default:
		add("backend %q", c.Backend)
	}
	if c.TemplateDir == "" {
		add("template_dir is empty")
	}
	if !strings.HasPrefix(c.TemplateExt, ".") {
		add("template_ext %q must start with a dot", c.TemplateExt)
	}
	if c.BlurSize < 0 {
		add("blur_size %d", c.BlurSize)
	}
	if c.BinaryThreshold < 0 || c.BinaryThreshold > 255 {
		add("binary_threshold %d outside [0,255]", c.BinaryThreshold)
	}
	if c.MinAreaDivisor <= 0 || c.MaxAreaDivisor <= 0 || c.MaxAreaDivisor >= c.MinAreaDivisor {
		add("area divisors %d/%d", c.MinAreaDivisor, c.MaxAreaDivisor)
	}
	if c.ApproxEpsilon <= 0 || c.CornerEpsilon <= 0 {
		add("approx_epsilon and corner_epsilon must be positive")
	}
	if c.MinConfidence < 0 || c.MinConfidence >= 1 {
		add("min_confidence %g outside [0,1)", c.MinConfidence)
	}
	if c.Workers < 1 {
		add("workers %d", c.Workers)
	}
	if c.LabelScale < 1 {
		add("label_scale %d", c.LabelScale)
	}
	if c.MetricsNamespace == "" {
		add("metrics_namespace is empty")
	}
	for i, b := range c.MetricsBuckets {
		if b <= 0 || (i > 0 && b <= c.MetricsBuckets[i-1]) {
			add("metrics_buckets must be positive and increasing")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
