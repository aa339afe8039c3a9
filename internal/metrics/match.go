package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "skillmatch"

// Match pipeline Prometheus metrics.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_requests_total",
			Help:      "Total number of match requests",
		},
		[]string{"status"},
	)

	MatchRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_request_duration_seconds",
			Help:      "End-to-end match duration in seconds, embedding included",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	MatchSkillsPerRequest = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_skills_per_request",
			Help:      "Number of skills per match request",
			Buckets:   []float64{1, 2, 3, 5, 10, 20},
		},
	)
)

func matchCollectors() []prometheus.Collector {
	return []prometheus.Collector{MatchRequestsTotal, MatchRequestDuration, MatchSkillsPerRequest}
}
