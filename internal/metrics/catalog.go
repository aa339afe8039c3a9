package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog cache Prometheus metrics.
var (
	CatalogLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog loads by source and result",
		},
		[]string{"source", "result"}, // result: "success" / "error"
	)

	CatalogLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_load_duration_seconds",
			Help:      "Catalog load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	CatalogCourses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_courses",
			Help:      "Courses in the currently cached catalog",
		},
	)
)

func catalogCollectors() []prometheus.Collector {
	return []prometheus.Collector{CatalogLoadsTotal, CatalogLoadDuration, CatalogCourses}
}
