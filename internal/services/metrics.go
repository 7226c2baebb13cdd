// Prometheus collectors for the placement pipeline. Label cardinality is
// bounded: the only label is the rejection reason, drawn from a fixed set.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// placementsAccepted counts placements committed to the canvas.
	placementsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "canvas_placements_accepted_total",
			Help: "Total number of accepted pixel placements.",
		},
	)

	// placementsRejected counts rejected placements by reason
	// (bounds, color, auth, cooldown).
	placementsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canvas_placements_rejected_total",
			Help: "Total number of rejected pixel placements.",
		},
		[]string{"reason"},
	)

	// historyAppendFailures counts best-effort history writes that failed
	// after the primary commit succeeded.
	historyAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "canvas_history_append_failures_total",
			Help: "Total number of failed history appends (placement still committed).",
		},
	)
)

func init() {
	prometheus.MustRegister(placementsAccepted, placementsRejected, historyAppendFailures)
}
