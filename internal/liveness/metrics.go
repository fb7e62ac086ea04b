package liveness

import "github.com/prometheus/client_golang/prometheus"

// Label values for the terminations counter.
const (
	pathExplicit  = "explicit"
	pathCollected = "collected"
)

var (
	registeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_liveness_registered_total",
			Help: "Total number of tracking handles created by Register.",
		},
	)

	terminationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_liveness_terminations_total",
			Help: "Total number of pending units released, by termination path.",
		},
		[]string{"path"},
	)

	staleNotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_liveness_stale_notifications_total",
			Help: "NotifyTerminated calls that found no live tracking handle.",
		},
	)
)

func init() {
	prometheus.MustRegister(registeredTotal)
	prometheus.MustRegister(terminationsTotal)
	prometheus.MustRegister(staleNotificationsTotal)

	terminationsTotal.WithLabelValues(pathExplicit)
	terminationsTotal.WithLabelValues(pathCollected)
}
