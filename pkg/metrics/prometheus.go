package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Image outcome labels for the images counter.
const (
	StatusOK         = "ok"
	StatusUnreadable = "unreadable"
	StatusFailed     = "failed"
)

// Manager owns the Prometheus metrics of one process.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         *prometheus.Registry

	images        *prometheus.CounterVec
	cardsDetected prometheus.Counter
	labelsUnknown *prometheus.CounterVec
	imageDuration prometheus.Histogram
	templates     *prometheus.GaugeVec
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry it
// registers on a fresh private registry, so Go runtime metrics stay out of
// the dump.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardscan",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.images = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "images_total",
		Help:        "Images processed, by outcome",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.cardsDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "cards_detected_total",
		Help:        "Card candidates accepted by the contour filter",
		ConstLabels: m.constLabels,
	})

	m.labelsUnknown = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "labels_unknown_total",
		Help:        "Detections whose rank or suit matched no template",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.imageDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        "image_duration_seconds",
		Help:        "Wall time to load, recognize and annotate one image",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.templates = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "templates_loaded",
		Help:        "Templates in the loaded library, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveImage records one processed image and how long it took.
func (m *Manager) ObserveImage(status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.images.WithLabelValues(status).Inc()
	m.imageDuration.Observe(d.Seconds())
}

// AddCards adds n accepted card candidates.
func (m *Manager) AddCards(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.cardsDetected.Add(float64(n))
}

// IncUnknown counts a detection left Unknown for kind ("rank" or "suit").
func (m *Manager) IncUnknown(kind string) {
	if !m.enabled {
		return
	}
	m.labelsUnknown.WithLabelValues(kind).Inc()
}

// SetTemplates records the size of the template library for kind.
func (m *Manager) SetTemplates(kind string, n int) {
	if !m.enabled {
		return
	}
	m.templates.WithLabelValues(kind).Set(float64(n))
}

// WriteTextfile dumps every metric in the text exposition format to path,
// for pickup by a node-exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, path, err)
	}
	return nil
}
