package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations   *prometheus.CounterVec
	scores        *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	samplesStored *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsage_evaluations_total",
				Help: "Total number of signal evaluations by direction and category",
			},
			[]string{"direction", "category"},
		),
		scores: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsage_last_score",
				Help: "Most recent signal score by direction",
			},
			[]string{"direction"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsage_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsage_last_price",
				Help: "Last observed price for an item",
			},
			[]string{"item"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsage_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		samplesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsage_samples_stored_total",
				Help: "Total number of price samples written per backend",
			},
			[]string{"backend", "market"},
		),
	}
}

// RecordEvaluation counts one completed signal evaluation.
func (r *Recorder) RecordEvaluation(direction, category string) {
	r.evaluations.WithLabelValues(direction, category).Inc()
}

// RecordScore records the most recent score for a direction.
func (r *Recorder) RecordScore(direction string, score float64) {
	r.scores.WithLabelValues(direction).Set(score)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for an item.
func (r *Recorder) RecordLastPrice(itemID string, price float64) {
	r.lastPrice.WithLabelValues(itemID).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSampleStored counts one persisted price sample.
func (r *Recorder) RecordSampleStored(backend, market string) {
	r.samplesStored.WithLabelValues(backend, market).Inc()
}
