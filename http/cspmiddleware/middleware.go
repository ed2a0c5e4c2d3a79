// Package cspmiddleware sets Content-Security-Policy headers on responses.
//
// Handlers adjust the policies of their response through the request,
// with Update, Replace, Config, Select and the exemptions, or wrap
// themselves with the With* helpers. The headers are computed right before
// the status line is written, so a handler using the nonce must read it
// before writing the response:
//
//	nonce := cspmiddleware.Nonce(r).String()
//	tmpl.Execute(w, map[string]any{"Nonce": nonce})
package cspmiddleware

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/yusing/cspolicy/config"
	"github.com/yusing/cspolicy/csp"
	httputils "github.com/yusing/cspolicy/http"
	"github.com/yusing/cspolicy/http/httpheaders"
)

// Middleware emits the configured policies.
type Middleware struct {
	current atomic.Pointer[snapshot]
	metrics *Metrics
}

type snapshot struct {
	cfg     *config.Config
	builder *csp.Builder
	sampler *csp.ReportSampler
}

func newSnapshot(cfg *config.Config) *snapshot {
	if cfg == nil {
		cfg = new(config.Config)
	}
	return &snapshot{
		cfg:     cfg,
		builder: cfg.Builder(),
		sampler: cfg.Sampler(),
	}
}

type Option func(*Middleware)

// WithMetrics records the emitter metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// New creates a Middleware for cfg. A nil cfg emits the default policy.
func New(cfg *config.Config, opts ...Option) *Middleware {
	m := &Middleware{}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(newSnapshot(cfg))
	return m
}

// Reload replaces the configuration. Requests already in flight keep the
// configuration they started with.
func (m *Middleware) Reload(cfg *config.Config) {
	m.current.Store(newSnapshot(cfg))
	m.metrics.RecordReload()
}

// Config returns the current configuration.
func (m *Middleware) Config() *config.Config {
	return m.current.Load().cfg
}

// Handler wraps next so that its responses carry the CSP headers.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, e := m.Start(r)
		hw := httputils.NewHeaderHookWriter(w, e.Emit)
		next.ServeHTTP(hw, r)
		hw.Fire(http.StatusOK)
	})
}

// Start prepares r for the middleware and returns the request to pass on
// together with the Emitter of its response. It is meant for adapters to
// other frameworks; Handler covers net/http.
func (m *Middleware) Start(r *http.Request) (*http.Request, *Emitter) {
	st := &requestState{nonce: csp.NewNonce()}
	r = withRequestState(r, st)
	return r, &Emitter{
		snap:    m.current.Load(),
		metrics: m.metrics,
		r:       r,
		st:      st,
	}
}

// Emitter sets the CSP headers of one response.
type Emitter struct {
	snap    *snapshot
	metrics *Metrics
	r       *http.Request
	st      *requestState

	done bool
}

// Emit sets the CSP headers in h for a response with status. It finalizes
// the nonce. Only the first call has an effect.
func (e *Emitter) Emit(h http.Header, status int) {
	if e.done {
		return
	}
	e.done = true

	nonce, generated := e.st.nonce.Finalize()
	ov := e.st.snapshot()
	if ov.Exempt {
		e.metrics.RecordSkipped(SkipExempt)
		return
	}
	if e.snap.cfg.Debug && (status == http.StatusNotFound || status == http.StatusInternalServerError) {
		e.metrics.RecordSkipped(SkipDebug)
		return
	}

	opts := ov.buildOptions()
	if generated {
		opts.Nonce = nonce
	}
	if e.snap.sampler != nil {
		e.metrics.RecordSampling(e.snap.sampler.Apply(&opts, e.snap.builder.Names(opts)))
	}

	results, err := e.snap.builder.Build(opts)
	if err != nil {
		e.st.mu.Lock()
		e.st.err = err
		e.st.mu.Unlock()
		e.metrics.RecordBuildError()
		e.metrics.RecordSkipped(SkipBuildError)
		httputils.LogError(e.r).Err(err).Msg("failed to build content security policy")
		return
	}

	var enforced, reportOnly []string
	for _, res := range results {
		switch {
		case res.ReportOnly && ov.ExemptReportOnly:
			e.metrics.RecordSkipped(SkipExemptReportOnly)
		case res.Excludes(e.r.URL.Path):
			e.metrics.RecordSkipped(SkipExcluded)
		case res.Policy == "":
		case res.ReportOnly:
			reportOnly = append(reportOnly, res.Policy)
		default:
			enforced = append(enforced, res.Policy)
		}
	}
	e.set(h, httpheaders.HeaderCSP, enforced)
	e.set(h, httpheaders.HeaderCSPReportOnly, reportOnly)
}

func (e *Emitter) set(h http.Header, name string, policies []string) {
	if len(policies) == 0 {
		return
	}
	if !httpheaders.SetIfAbsent(h, name, strings.Join(policies, ", ")) {
		e.metrics.RecordSkipped(SkipPreexisting)
		return
	}
	e.metrics.RecordEmitted(name)
}
