// Package metrics holds the daemon's prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmunix/autoani/internal/library"
)

const namespace = "autoani"

// Metrics groups every collector on a private registry so tests can build
// as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	TaskRuns         *prometheus.CounterVec
	TaskDuration     *prometheus.HistogramVec
	Transitions      *prometheus.CounterVec
	RemoteFiles      prometheus.Gauge
	ClassifiedFiles  prometheus.Gauge
	LastIndexRebuild prometheus.Gauge
}

// New registers all collectors, including the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TaskRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Scheduled and manual task runs by outcome",
		}, []string{"task", "result"}),
		TaskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task run duration",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"task"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episode_transitions_total",
			Help:      "Episode status transitions",
		}, []string{"from", "to"}),
		RemoteFiles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_index_files",
			Help:      "Video files in the last remote index",
		}),
		ClassifiedFiles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_index_classified_files",
			Help:      "Remote files mapped to a series and episode",
		}),
		LastIndexRebuild: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_index_last_rebuild_timestamp_seconds",
			Help:      "Unix time of the last successful remote index rebuild",
		}),
	}
}

// ObserveRun records one finished task run.
func (m *Metrics) ObserveRun(task string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.TaskRuns.WithLabelValues(task, result).Inc()
	m.TaskDuration.WithLabelValues(task).Observe(d.Seconds())
}

// ObserveTransition counts a status change. Register it with
// library.Store.OnTransition.
func (m *Metrics) ObserveTransition(e library.TransitionEvent) {
	m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
}

// ObserveIndex records the size of a rebuilt remote index.
func (m *Metrics) ObserveIndex(total, classified int) {
	m.RemoteFiles.Set(float64(total))
	m.ClassifiedFiles.Set(float64(classified))
	m.LastIndexRebuild.SetToCurrentTime()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
