// ABOUTME: Prometheus collectors for syncs, generated training, and uploads.
// ABOUTME: Registered on the default registry and served by the HTTP API at /metrics.
package coach

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coach",
		Name:      "activities_synced_total",
		Help:      "Activities stored by Garmin syncs.",
	})
	syncFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coach",
		Name:      "sync_failures_total",
		Help:      "User syncs that ended in an error.",
	})
	workoutsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Name:      "workouts_generated_total",
		Help:      "Workouts synthesized, by goal class.",
	}, []string{"goal"})
	plansGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach",
		Name:      "plans_generated_total",
		Help:      "Training plans generated, by goal class.",
	}, []string{"goal"})
	workoutsUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coach",
		Name:      "workouts_uploaded_total",
		Help:      "Workouts uploaded to Garmin.",
	})
	lastSync = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coach",
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful user sync.",
	})
)

func init() {
	prometheus.MustRegister(activitiesSynced, syncFailures, workoutsGenerated, plansGenerated, workoutsUploaded, lastSync)
}

func recordSync(saved int, at time.Time) {
	activitiesSynced.Add(float64(saved))
	lastSync.Set(float64(at.Unix()))
}
