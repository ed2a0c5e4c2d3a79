package httpheaders

import (
	"net/http"
	"strings"

	"github.com/yusing/cspolicy/csp"
)

const (
	HeaderCSP           = "Content-Security-Policy"
	HeaderCSPReportOnly = "Content-Security-Policy-Report-Only"
)

// CSPHeader returns the header a policy is sent under.
func CSPHeader(reportOnly bool) string {
	if reportOnly {
		return HeaderCSPReportOnly
	}
	return HeaderCSP
}

// SetIfAbsent sets key to value unless the header already has a value.
// It reports whether the header was set.
func SetIfAbsent(h http.Header, key, value string) bool {
	if len(h.Values(key)) > 0 {
		return false
	}
	h.Set(key, value)
	return true
}

// ParseCSP parses a CSP header value into policies.
//
// Policies are separated by ",", directives by ";". Directive names are
// case-insensitive and only the first occurrence of a directive counts.
// A directive without sources is a flag for flag directives and an empty
// list otherwise.
func ParseCSP(values ...string) []*csp.Policy {
	var policies []*csp.Policy
	for _, value := range values {
		for policyString := range strings.SplitSeq(value, ",") {
			p := csp.NewPolicy()
			for directiveString := range strings.SplitSeq(policyString, ";") {
				fields := strings.Fields(directiveString)
				if len(fields) == 0 {
					continue
				}
				name := strings.ToLower(fields[0])
				if p.Has(name) {
					continue
				}
				if len(fields) == 1 && csp.IsFlag(name) {
					p.SetFlag(name, true)
				} else {
					p.SetList(name, fields[1:]...)
				}
			}
			if p.Len() > 0 {
				policies = append(policies, p)
			}
		}
	}
	return policies
}

// ParseResponseCSP parses the enforced and report-only policies in h.
func ParseResponseCSP(h http.Header) (enforced, reportOnly []*csp.Policy) {
	return ParseCSP(h.Values(HeaderCSP)...), ParseCSP(h.Values(HeaderCSPReportOnly)...)
}
