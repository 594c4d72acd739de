// Package metrics holds the Prometheus collectors for the ledger service.
// Collectors live on a private registry so each app instance (and each
// test) gets its own.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/trackmyhand/internal/model"
)

const namespace = "trackmyhand"

// Metrics is the set of collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	EntriesApplied         *prometheus.CounterVec
	EntriesRejected        *prometheus.CounterVec
	GamesArchived          prometheus.Counter
	GamesDeleted           prometheus.Counter
	ReconciliationRefusals prometheus.Counter
	FoldFailures           prometheus.Counter
	CheckpointWrites       prometheus.Counter
	CheckpointFailures     prometheus.Counter
	RunningTrackers        prometheus.Gauge
	StreamClients          prometheus.Gauge
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntriesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_applied_total",
			Help:      "Ledger entries appended or revised, by kind",
		}, []string{"kind"}),
		EntriesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_rejected_total",
			Help:      "Ledger entries refused, by error kind",
		}, []string{"reason"}),
		GamesArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_archived_total",
			Help:      "Games archived and folded into statistics",
		}),
		GamesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_deleted_total",
			Help:      "Zero-length games deleted at archive time",
		}),
		ReconciliationRefusals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_refusals_total",
			Help:      "Archive attempts refused because pot and cash-out differ",
		}),
		FoldFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_fold_failures_total",
			Help:      "Per-player statistics updates that failed",
		}),
		CheckpointWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_writes_total",
			Help:      "Elapsed-time checkpoints persisted",
		}),
		CheckpointFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_failures_total",
			Help:      "Elapsed-time checkpoints that failed to persist",
		}),
		RunningTrackers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running_trackers",
			Help:      "Game clocks currently ticking",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Clients following a game's event stream",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.EntriesApplied,
		m.EntriesRejected,
		m.GamesArchived,
		m.GamesDeleted,
		m.ReconciliationRefusals,
		m.FoldFailures,
		m.CheckpointWrites,
		m.CheckpointFailures,
		m.RunningTrackers,
		m.StreamClients,
		m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EntryApplied(kind model.EntryKind) {
	if m == nil {
		return
	}
	m.EntriesApplied.WithLabelValues(string(kind)).Inc()
}

// EntryRejected counts a refused entry under the error kind it wraps
func (m *Metrics) EntryRejected(err error) {
	if m == nil {
		return
	}
	m.EntriesRejected.WithLabelValues(Reason(err)).Inc()
}

func (m *Metrics) GameArchived() {
	if m == nil {
		return
	}
	m.GamesArchived.Inc()
}

func (m *Metrics) GameDeleted() {
	if m == nil {
		return
	}
	m.GamesDeleted.Inc()
}

func (m *Metrics) ReconciliationRefused() {
	if m == nil {
		return
	}
	m.ReconciliationRefusals.Inc()
}

func (m *Metrics) FoldFailed(n int) {
	if m == nil {
		return
	}
	m.FoldFailures.Add(float64(n))
}

func (m *Metrics) CheckpointWritten() {
	if m == nil {
		return
	}
	m.CheckpointWrites.Inc()
}

func (m *Metrics) CheckpointFailed() {
	if m == nil {
		return
	}
	m.CheckpointFailures.Inc()
}

func (m *Metrics) TrackerStarted() {
	if m == nil {
		return
	}
	m.RunningTrackers.Inc()
}

// StreamSubscribed counts a client joining a game's event stream
func (m *Metrics) StreamSubscribed() {
	if m == nil {
		return
	}
	m.StreamClients.Inc()
}

func (m *Metrics) StreamUnsubscribed() {
	if m == nil {
		return
	}
	m.StreamClients.Dec()
}

func (m *Metrics) TrackerStopped() {
	if m == nil {
		return
	}
	m.RunningTrackers.Dec()
}

func (m *Metrics) ObserveRequest(method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, status).Observe(d.Seconds())
}

// Reason maps an error to its taxonomy label
func Reason(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrReference):
		return "reference"
	case errors.Is(err, model.ErrState):
		return "state"
	case errors.Is(err, model.ErrReconciliation):
		return "reconciliation"
	case errors.Is(err, model.ErrPersistence):
		return "persistence"
	}
	return "other"
}
