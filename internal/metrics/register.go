package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register adds the domain metrics to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		for _, group := range [][]prometheus.Collector{
			embeddingCollectors(),
			catalogCollectors(),
			matchCollectors(),
		} {
			prometheus.MustRegister(group...)
		}
	})
}
