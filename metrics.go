package xsd

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xsd",
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Time to parse and build a schema document into a frozen component graph.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	buildResolverWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xsd",
			Subsystem: "build",
			Name:      "resolver_warnings_total",
			Help:      "Built-in-overwrite warnings raised by the symbol-space resolver.",
		},
		[]string{"namespace"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xsd",
			Subsystem: "validate",
			Name:      "failures_total",
			Help:      "Validation failures, labeled by failure taxonomy kind.",
		},
		[]string{"kind"},
	)

	validationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xsd",
			Subsystem: "validate",
			Name:      "runs_total",
			Help:      "Completed instance-document validation runs, labeled by verdict.",
		},
		[]string{"verdict"},
	)
)

func init() {
	prometheus.MustRegister(buildDuration, buildResolverWarnings, validationFailures, validationRuns)
}

func observeValidation(v *Validator) {
	verdict := "valid"
	if !v.Valid() {
		verdict = "invalid"
	}
	validationRuns.WithLabelValues(verdict).Inc()
	for _, f := range v.failures {
		validationFailures.WithLabelValues(f.Kind.String()).Inc()
	}
}
