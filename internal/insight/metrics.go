package insight

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var generatorFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "revi_insight_generator_failures_total",
		Help: "Summary generator calls that failed or timed out and degraded to structured-only insights.",
	},
)
