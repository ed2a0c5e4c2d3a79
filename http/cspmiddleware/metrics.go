package cspmiddleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons reported by Metrics.
const (
	SkipExempt           = "exempt"
	SkipExemptReportOnly = "exempt_report_only"
	SkipDebug            = "debug"
	SkipExcluded         = "excluded"
	SkipPreexisting      = "preexisting"
	SkipBuildError       = "build_error"
)

// Metrics holds the Prometheus metrics of the header emitter.
//
// All methods accept a nil *Metrics.
type Metrics struct {
	headersEmitted *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	reportSampling *prometheus.CounterVec
	buildErrors    prometheus.Counter
	configReloads  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the emitter metrics in a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		headersEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csp_headers_emitted_total",
				Help: "Total number of CSP headers set by header name",
			},
			[]string{"header"},
		),

		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csp_policies_skipped_total",
				Help: "Total number of policies or responses left without CSP by reason",
			},
			[]string{"reason"},
		),

		reportSampling: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csp_report_sampling_total",
				Help: "Total number of report sampling decisions",
			},
			[]string{"decision"},
		),

		buildErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "csp_build_errors_total",
				Help: "Total number of responses whose policies failed to build",
			},
		),

		configReloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "csp_config_reloads_total",
				Help: "Total number of configuration reloads",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.headersEmitted,
		m.skipped,
		m.reportSampling,
		m.buildErrors,
		m.configReloads,
	)

	return m
}

// BuildErrors returns the build error counter.
func (m *Metrics) BuildErrors() prometheus.Counter {
	return m.buildErrors
}

// ConfigReloads returns the reload counter.
func (m *Metrics) ConfigReloads() prometheus.Counter {
	return m.configReloads
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordEmitted(header string) {
	if m == nil {
		return
	}
	m.headersEmitted.WithLabelValues(header).Inc()
}

func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordSampling(kept bool) {
	if m == nil {
		return
	}
	decision := "stripped"
	if kept {
		decision = "kept"
	}
	m.reportSampling.WithLabelValues(decision).Inc()
}

func (m *Metrics) RecordBuildError() {
	if m == nil {
		return
	}
	m.buildErrors.Inc()
}

func (m *Metrics) RecordReload() {
	if m == nil {
		return
	}
	m.configReloads.Inc()
}
