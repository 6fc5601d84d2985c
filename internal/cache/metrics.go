package cache

import "github.com/prometheus/client_golang/prometheus"

var fetchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "powerd",
		Subsystem: "model",
		Name:      "artifact_fetches_total",
		Help:      "Artifact downloads attempted, by model and outcome",
	},
	[]string{"model", "outcome"},
)

func init() {
	prometheus.MustRegister(fetchesTotal)
}
