package engine

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const metricsNamespace = "distlab"

// Metrics holds the engine's Prometheus collectors on a private registry,
// so tests and embedded engines never collide on the default registry.
type Metrics struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	points      prometheus.Histogram
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Evaluations recorded, by family, function and outcome status.",
		}, []string{"family", "function", "status"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_hits_total",
			Help:      "Evaluations served from a stored outcome with the same cache key.",
		}, []string{"family", "function"}),
		points: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "evaluation_points",
			Help:      "Values produced per evaluation (points, or draws for rng).",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
	}
}

// Registry returns the private registry, e.g. for promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(out *Report) {
	ev := out.Evaluation
	m.evaluations.WithLabelValues(ev.Spec.Family, ev.Function, out.Outcome.Status).Inc()
	if out.Outcome.Cached {
		m.cacheHits.WithLabelValues(ev.Spec.Family, ev.Function).Inc()
	}
	m.points.Observe(float64(len(out.Outcome.Values)))
}

// WriteText writes every collected metric in the Prometheus text
// exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
