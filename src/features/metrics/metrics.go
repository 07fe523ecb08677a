package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identifyLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tonegarden_identify_lookups_total",
		Help: "Identification lookups by source and outcome.",
	}, []string{"source", "outcome"})

	identifyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tonegarden_identify_duration_seconds",
		Help:    "End-to-end latency of one identify call.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	gardenerProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_processed_total",
		Help: "Tracks the gardener has assessed since start.",
	})

	gardenerVerified = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_verified_total",
		Help: "Tracks the gardener verified against their fingerprint.",
	})

	gardenerMismatched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_mismatched_total",
		Help: "Tracks the gardener flagged as possibly mislabeled.",
	})

	gardenerUnidentified = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_unidentified_total",
		Help: "Tracks no fingerprint candidate was found for.",
	})

	gardenerErrors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_errors_total",
		Help: "Errors the gardener ran into.",
	})

	gardenerAverageScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_gardener_average_score",
		Help: "Average quality score over everything assessed.",
	})

	tracksPendingReview = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tonegarden_tracks_pending_review",
		Help: "Tracks whose quality flags ask for a human look.",
	})
)

// RecordLookup counts one external lookup.
func RecordLookup(source, outcome string) {
	identifyLookups.WithLabelValues(source, outcome).Inc()
}

// ObserveIdentify records the latency of one identify call.
func ObserveIdentify(elapsed time.Duration) {
	identifyLatency.Observe(elapsed.Seconds())
}
