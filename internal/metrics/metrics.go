// Package metrics exposes console activity as prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpggio/confsched/internal/domain/task"
)

type PrometheusMetrics struct {
	registry          *prometheus.Registry
	operationsTotal   *prometheus.CounterVec
	reconcileRemoved  prometheus.Counter
	reconcileAdded    prometheus.Counter
	reconcileRuns     prometheus.Counter
	tasksByStatus     *prometheus.GaugeVec
	jobRunsTotal      *prometheus.CounterVec
	lastBackupSeconds prometheus.Gauge
}

// New registers the console metrics on a fresh registry under namespace.
func New(namespace string) *PrometheusMetrics {
	reg := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: reg,
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_operations_total",
				Help:      "Task operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		reconcileRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_removed_total",
				Help:      "Orphan task records removed by reconciliation",
			},
		),
		reconcileAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_added_total",
				Help:      "Task records created for untracked config files",
			},
		),
		reconcileRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_runs_total",
				Help:      "Reconciliation passes",
			},
		),
		tasksByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks",
				Help:      "Tasks by file status at the last listing",
			},
			[]string{"status"},
		),
		jobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Background job runs by job and result",
			},
			[]string{"job", "result"},
		),
		lastBackupSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_backup_timestamp_seconds",
				Help:      "Unix time of the last successful store backup",
			},
		),
	}

	reg.MustRegister(
		m.operationsTotal,
		m.reconcileRemoved,
		m.reconcileAdded,
		m.reconcileRuns,
		m.tasksByStatus,
		m.jobRunsTotal,
		m.lastBackupSeconds,
	)

	return m
}

func (m *PrometheusMetrics) RecordOperation(operation, result string) {
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *PrometheusMetrics) RecordReconcile(removed, added int) {
	m.reconcileRuns.Inc()
	m.reconcileRemoved.Add(float64(removed))
	m.reconcileAdded.Add(float64(added))
}

func (m *PrometheusMetrics) SetStatusCounts(counts map[task.Status]int) {
	for status, n := range counts {
		m.tasksByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (m *PrometheusMetrics) RecordJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRunsTotal.WithLabelValues(job, result).Inc()
}

func (m *PrometheusMetrics) SetLastBackup(unixSeconds float64) {
	m.lastBackupSeconds.Set(unixSeconds)
}

// Handler serves the registry in the prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
