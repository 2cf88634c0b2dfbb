package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported by the service.
type Metrics struct {
	Lookups        *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	POIsReturned   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compass_lookups_total",
			Help: "Total number of lookups by operation and outcome.",
		}, []string{"operation", "status"}),
		UpstreamErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compass_upstream_errors_total",
			Help: "Total number of failed requests to upstream services.",
		}, []string{"upstream", "reason"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compass_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream services.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
		POIsReturned: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "compass_pois_returned",
			Help:    "Number of POIs returned per retrieval.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}
