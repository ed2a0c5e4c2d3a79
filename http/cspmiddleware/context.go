package cspmiddleware

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/yusing/cspolicy/csp"
)

// Overrides are the per-response instructions a handler attaches to its
// request. The zero Overrides builds the configured policies unchanged.
type Overrides struct {
	// Config overlays the configured policies and selects its names.
	Config *csp.PolicySet
	// Update appends sources per policy name.
	Update *csp.PolicySet
	// Replace overwrites directives per policy name.
	Replace *csp.PolicySet
	// Select names the policies to emit.
	Select []string
	// Exempt sends no CSP header at all.
	Exempt bool
	// ExemptReportOnly drops the report-only policies.
	ExemptReportOnly bool
}

func (o Overrides) buildOptions() csp.BuildOptions {
	return csp.BuildOptions{
		Config:  o.Config,
		Update:  o.Update,
		Replace: o.Replace,
		Select:  o.Select,
	}
}

type requestState struct {
	mu        sync.Mutex
	overrides Overrides
	nonce     *csp.Nonce
	err       error
}

type requestStateKey struct{}

func withRequestState(r *http.Request, st *requestState) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestStateKey{}, st))
}

func stateFrom(r *http.Request) *requestState {
	st, _ := r.Context().Value(requestStateKey{}).(*requestState)
	return st
}

func modify(r *http.Request, fn func(o *Overrides)) {
	st := stateFrom(r)
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.overrides)
}

func (st *requestState) snapshot() Overrides {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.overrides
}

// Nonce returns the nonce of the request, or nil when the request did not
// go through the middleware.
//
// Reading it adds 'nonce-<value>' to the directives in include_nonce_in.
// It must be read before the response headers are written.
func Nonce(r *http.Request) *csp.Nonce {
	if st := stateFrom(r); st != nil {
		return st.nonce
	}
	return nil
}

// Err returns the error that kept the CSP headers from being set.
func Err(r *http.Request) error {
	st := stateFrom(r)
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// GetOverrides returns a copy of the overrides attached to r.
func GetOverrides(r *http.Request) Overrides {
	if st := stateFrom(r); st != nil {
		return st.snapshot()
	}
	return Overrides{}
}

// Update sets the sources appended to the configured policies.
// policies is anything csp.Normalize accepts. The last call wins.
func Update(r *http.Request, policies any) {
	set := csp.Normalize(policies)
	modify(r, func(o *Overrides) { o.Update = set })
}

// Replace sets the directives overwritten in the configured policies.
// An unset value drops the directive. The last call wins.
func Replace(r *http.Request, policies any) {
	set := csp.Normalize(policies)
	modify(r, func(o *Overrides) { o.Replace = set })
}

// Config sets policies that overlay the configured ones by name. Unless
// Select is also used, only these policies are emitted.
func Config(r *http.Request, policies any) {
	set := csp.Normalize(policies)
	modify(r, func(o *Overrides) { o.Config = set })
}

// Select sets the policies to emit, in header order.
func Select(r *http.Request, names ...string) {
	names = slices.Clone(names)
	modify(r, func(o *Overrides) { o.Select = names })
}

// Exempt sends the response without CSP headers.
func Exempt(r *http.Request) {
	modify(r, func(o *Overrides) { o.Exempt = true })
}

// ExemptReportOnly sends the response without report-only policies.
func ExemptReportOnly(r *http.Request) {
	modify(r, func(o *Overrides) { o.ExemptReportOnly = true })
}
