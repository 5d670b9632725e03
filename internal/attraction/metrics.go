package attraction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attraction_submissions_total",
			Help: "Total number of rating submissions by outcome",
		},
		[]string{"outcome"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attraction_matches_total",
			Help: "Total number of mutual matches completed",
		},
	)
)

func recordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

func recordMatch() {
	matchesTotal.Inc()
}
