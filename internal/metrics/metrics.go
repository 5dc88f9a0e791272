// Package metrics exposes Prometheus collectors for the store, the
// auto-save reconciler and the project portfolio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

const namespace = "tupad"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	storeWrites     *prometheus.CounterVec
	externalChanges *prometheus.CounterVec
	commits         *prometheus.CounterVec
	superseded      prometheus.Counter

	projects      *prometheus.GaugeVec
	beneficiaries prometheus.Gauge
	female        prometheus.Gauge
	femalePct     prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Store writes by key and result (ok, failed).",
		}, []string{"key", "result"}),
		externalChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "external_changes_total",
			Help:      "Changes written by another process and picked up on refresh.",
		}, []string{"key"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "commits_total",
			Help:      "Auto-save commits by phase (pre, post).",
		}, []string{"phase"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "superseded_total",
			Help:      "Pending commits replaced by a newer edit before firing.",
		}),
		projects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "projects",
			Help:      "Projects by status.",
		}, []string{"status"}),
		beneficiaries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "beneficiaries",
			Help:      "Total beneficiaries, actual where verified.",
		}),
		female: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "female_beneficiaries",
			Help:      "Total female beneficiaries, actual where verified.",
		}),
		femalePct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "female_percent",
			Help:      "Female share of beneficiaries, rounded percent.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.storeWrites,
		m.externalChanges,
		m.commits,
		m.superseded,
		m.projects,
		m.beneficiaries,
		m.female,
		m.femalePct,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) StoreWrite(key string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.storeWrites.WithLabelValues(key, result).Inc()
}

func (m *Metrics) ExternalChange(key string) {
	m.externalChanges.WithLabelValues(key).Inc()
}

func (m *Metrics) Commit(phase string) {
	m.commits.WithLabelValues(phase).Inc()
}

func (m *Metrics) Superseded() {
	m.superseded.Inc()
}

// ObservePortfolio sets the portfolio gauges from stats.
func (m *Metrics) ObservePortfolio(stats project.Stats) {
	m.projects.WithLabelValues(string(project.StatusCompleted)).Set(float64(stats.Completed))
	m.projects.WithLabelValues(string(project.StatusPending)).Set(float64(stats.Ongoing))
	m.beneficiaries.Set(float64(stats.TotalBeneficiaries))
	m.female.Set(float64(stats.TotalFemale))
	m.femalePct.Set(float64(stats.FemalePct))
}

// TrackPortfolio returns a store subscriber that refreshes the portfolio
// gauges whenever key changes.
func (m *Metrics) TrackPortfolio(key string, stats func() project.Stats) func(string) {
	return func(changed string) {
		if changed == key {
			m.ObservePortfolio(stats())
		}
	}
}
