package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "seeder"

// RunMetrics records step outcomes and persistence throughput for a seeding run.
type RunMetrics struct {
	stepDuration  *prometheus.HistogramVec
	stepSuccess   *prometheus.CounterVec
	stepFailure   *prometheus.CounterVec
	persisted     *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	shortfall     prometheus.Gauge
}

// NewRunMetrics registers the run metrics on the provided registerer.
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	if reg == nil {
		return &RunMetrics{}
	}
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Duration of seeding steps in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"step"})
	stepSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "step_success_total",
		Help:      "Seeding steps that completed.",
	}, []string{"step"})
	stepFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "step_failure_total",
		Help:      "Seeding steps that failed.",
	}, []string{"step"})
	persisted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_persisted_total",
		Help:      "Documents written per collection.",
	}, []string{"collection"})
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of bulk inserts in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"collection"})
	shortfall := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "review_shortfall",
		Help:      "Requested reviews that could not be produced for lack of received orders.",
	})
	reg.MustRegister(stepDuration, stepSuccess, stepFailure, persisted, batchDuration, shortfall)
	return &RunMetrics{
		stepDuration:  stepDuration,
		stepSuccess:   stepSuccess,
		stepFailure:   stepFailure,
		persisted:     persisted,
		batchDuration: batchDuration,
		shortfall:     shortfall,
	}
}

// ObserveStep records the duration for the named step.
func (m *RunMetrics) ObserveStep(step string, duration time.Duration) {
	if m == nil || m.stepDuration == nil {
		return
	}
	m.stepDuration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named step.
func (m *RunMetrics) IncSuccess(step string) {
	if m == nil || m.stepSuccess == nil {
		return
	}
	m.stepSuccess.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncFailure increments the failure counter for the named step.
func (m *RunMetrics) IncFailure(step string) {
	if m == nil || m.stepFailure == nil {
		return
	}
	m.stepFailure.WithLabelValues(normalizeLabel(step)).Inc()
}

// ObserveBatch records one bulk insert of size documents.
func (m *RunMetrics) ObserveBatch(collection string, size int, duration time.Duration) {
	if m == nil || m.persisted == nil {
		return
	}
	label := normalizeLabel(collection)
	m.persisted.WithLabelValues(label).Add(float64(size))
	m.batchDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// SetShortfall exports the review shortfall of the run.
func (m *RunMetrics) SetShortfall(n int) {
	if m == nil || m.shortfall == nil {
		return
	}
	m.shortfall.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
