// Package metrics exposes Prometheus instrumentation for backup and
// restore processing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushq_backups_total",
		Help: "Backups finished by the generator, by terminal status.",
	}, []string{"status"})

	backupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campushq_backup_duration_seconds",
		Help:    "Wall time of completed backup generations.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	restoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushq_restores_total",
		Help: "Restores finished by the replayer, by terminal status.",
	}, []string{"status"})

	restoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campushq_restore_duration_seconds",
		Help:    "Wall time of completed restore replays.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	verifyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushq_verify_failures_total",
		Help: "Artifact verification failures, by check.",
	}, []string{"check"})

	tasksSpilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campushq_background_tasks_spilled_total",
		Help: "Background tasks run on a spill goroutine because the queue was full.",
	})
)

// BackupCompleted records a backup reaching a terminal status.
func BackupCompleted(status string) {
	backupsTotal.WithLabelValues(status).Inc()
}

// ObserveBackupDuration records the wall time of a finished backup.
func ObserveBackupDuration(d time.Duration) {
	backupDuration.Observe(d.Seconds())
}

// RestoreCompleted records a restore reaching a terminal status.
func RestoreCompleted(status string) {
	restoresTotal.WithLabelValues(status).Inc()
}

// ObserveRestoreDuration records the wall time of a finished restore.
func ObserveRestoreDuration(d time.Duration) {
	restoreDuration.Observe(d.Seconds())
}

// VerifyFailed records an artifact failing a verification check
// ("integrity" or "signature").
func VerifyFailed(check string) {
	verifyFailuresTotal.WithLabelValues(check).Inc()
}

// TaskSpilled records a background task that bypassed the bounded queue.
func TaskSpilled() {
	tasksSpilledTotal.Inc()
}

// Handler returns the HTTP handler serving the Prometheus text exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}
