package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/vigil/internal/actor"
)

// Outcome label values.
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomePanicked  = "panicked"
)

var (
	pendingActors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_scheduler_pending_actors",
			Help: "Pending count of the scheduler's liveness register.",
		},
	)

	trackedActors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_scheduler_tracked_actors",
			Help: "Number of live tracking handles in the liveness register.",
		},
	)

	actorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_scheduler_actors_total",
			Help: "Total number of actors whose behavior returned, by behavior and outcome.",
		},
		[]string{"behavior", "outcome"},
	)

	actorDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_scheduler_actor_duration_seconds",
			Help:    "Wall-clock run time of actor behaviors, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(pendingActors)
	prometheus.MustRegister(trackedActors)
	prometheus.MustRegister(actorsTotal)
	prometheus.MustRegister(actorDuration)

	// Pre-initialize label combinations for built-in behaviors so they show up
	// in /metrics with value 0 from startup.
	for _, b := range []string{actor.BehaviorNoop, actor.BehaviorSleep, actor.BehaviorFail} {
		actorsTotal.WithLabelValues(b, outcomeCompleted)
		actorsTotal.WithLabelValues(b, outcomeFailed)
		actorsTotal.WithLabelValues(b, outcomePanicked)
	}
}
