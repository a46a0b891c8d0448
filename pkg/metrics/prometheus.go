package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	gatherer prometheus.Gatherer

	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	candidates      prometheus.Gauge
	recommendations prometheus.Gauge
	sentiment       *prometheus.GaugeVec
	notifications   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New registers the collectors on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry registers on reg; tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: g,
		scansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpscout_scans_total",
				Help: "Scan cycles by outcome",
			},
			[]string{"result"},
		),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "perpscout_scan_duration_seconds",
			Help:    "Wall time of a scan cycle",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		}),
		candidates: f.NewGauge(prometheus.GaugeOpts{
			Name: "perpscout_candidates",
			Help: "Instruments that passed screening in the last cycle",
		}),
		recommendations: f.NewGauge(prometheus.GaugeOpts{
			Name: "perpscout_recommendations",
			Help: "Recommendations produced by the last successful cycle",
		}),
		sentiment: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perpscout_sentiment_score",
				Help: "Last sentiment score per asset",
			},
			[]string{"asset"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpscout_notifications_total",
				Help: "Telegram signal deliveries by outcome",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perpscout_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "perpscout_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan counts a finished cycle; only successful ones feed the duration histogram.
func (r *Recorder) RecordScan(result string, seconds float64) {
	r.scansTotal.WithLabelValues(result).Inc()
	if result == "success" {
		r.scanDuration.Observe(seconds)
	}
}

func (r *Recorder) RecordCandidates(n int) { r.candidates.Set(float64(n)) }

func (r *Recorder) RecordRecommendations(n int) { r.recommendations.Set(float64(n)) }

func (r *Recorder) RecordSentiment(asset string, score float64) {
	r.sentiment.WithLabelValues(asset).Set(score)
}

func (r *Recorder) RecordNotification(result string) {
	r.notifications.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
