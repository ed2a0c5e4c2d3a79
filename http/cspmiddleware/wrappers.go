package cspmiddleware

import (
	"net/http"
	"slices"

	"github.com/yusing/cspolicy/csp"
)

func withOverrides(fn func(o *Overrides)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			modify(r, fn)
			next.ServeHTTP(w, r)
		})
	}
}

// WithUpdate wraps a handler so that its responses use Update(policies).
func WithUpdate(policies any) func(http.Handler) http.Handler {
	set := csp.Normalize(policies)
	return withOverrides(func(o *Overrides) { o.Update = set })
}

// WithReplace wraps a handler so that its responses use Replace(policies).
func WithReplace(policies any) func(http.Handler) http.Handler {
	set := csp.Normalize(policies)
	return withOverrides(func(o *Overrides) { o.Replace = set })
}

// WithConfig wraps a handler so that its responses use Config(policies).
func WithConfig(policies any) func(http.Handler) http.Handler {
	set := csp.Normalize(policies)
	return withOverrides(func(o *Overrides) { o.Config = set })
}

// WithSelect wraps a handler so that its responses emit only names.
func WithSelect(names ...string) func(http.Handler) http.Handler {
	names = slices.Clone(names)
	return withOverrides(func(o *Overrides) { o.Select = names })
}

// WithExempt wraps a handler so that its responses carry no CSP header.
func WithExempt(next http.Handler) http.Handler {
	return withOverrides(func(o *Overrides) { o.Exempt = true })(next)
}

// WithExemptReportOnly wraps a handler so that its responses carry no
// report-only policy.
func WithExemptReportOnly(next http.Handler) http.Handler {
	return withOverrides(func(o *Overrides) { o.ExemptReportOnly = true })(next)
}
