package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the recommendation core.
type Metrics struct {
	RecommendRequests   *prometheus.CounterVec
	InteractionRequests *prometheus.CounterVec
	IngestedRecords     *prometheus.CounterVec
	DroppedRecords      prometheus.Counter
	CatalogSize         prometheus.Gauge
	RecommendLatency    prometheus.Histogram
}

// NewMetrics registers and returns the core metric collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecommendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watsnew",
			Name:      "recommend_requests_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		InteractionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watsnew",
			Name:      "interaction_requests_total",
			Help:      "Interaction recordings by action.",
		}, []string{"action"}),
		IngestedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watsnew",
			Name:      "ingested_records_total",
			Help:      "Raw records ingested by result.",
		}, []string{"result"}),
		DroppedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "watsnew",
			Name:      "dropped_records_total",
			Help:      "Raw records dropped at the ingestion boundary.",
		}),
		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "watsnew",
			Name:      "catalog_items",
			Help:      "Items currently in the catalog.",
		}),
		RecommendLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "watsnew",
			Name:      "recommend_duration_seconds",
			Help:      "End-to-end recommendation latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// NewDefaultMetrics registers the collectors on the default registry.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
