package httpheaders

import (
	"net/http"
	"testing"

	"github.com/yusing/cspolicy/csp"
	expect "github.com/yusing/cspolicy/testing"
)

func TestParseCSP(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected []string
	}{
		{
			name:     "No CSP header",
			values:   nil,
			expected: nil,
		},
		{
			name:     "single policy",
			values:   []string{"default-src 'self' example.com; img-src *"},
			expected: []string{"default-src 'self' example.com; img-src *"},
		},
		{
			name:     "whitespace and case",
			values:   []string{"  DEFAULT-SRC   'self' ;;  img-src  a   b ; "},
			expected: []string{"default-src 'self'; img-src a b"},
		},
		{
			name:     "flags and empty lists",
			values:   []string{"upgrade-insecure-requests; sandbox; default-src 'none'"},
			expected: []string{"upgrade-insecure-requests; sandbox; default-src 'none'"},
		},
		{
			name:     "duplicate directive",
			values:   []string{"img-src a; img-src b"},
			expected: []string{"img-src a"},
		},
		{
			name:     "joined policies",
			values:   []string{"default-src 'self', img-src a; report-uri /r"},
			expected: []string{"default-src 'self'", "img-src a; report-uri /r"},
		},
		{
			name:     "multiple header values",
			values:   []string{"default-src 'self'", "script-src 'unsafe-inline'"},
			expected: []string{"default-src 'self'", "script-src 'unsafe-inline'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policies := ParseCSP(tt.values...)
			expect.Len(t, policies, len(tt.expected))
			for i, p := range policies {
				expect.Equal(t, csp.Compile(p, "").Policy, tt.expected[i])
			}
		})
	}
}

func TestParseCSPFlag(t *testing.T) {
	policies := ParseCSP("upgrade-insecure-requests; sandbox")
	expect.Len(t, policies, 1)
	v, _ := policies[0].Get(csp.UpgradeInsecureRequests)
	expect.Equal(t, v.Kind(), csp.KindFlag)
	v, _ = policies[0].Get(csp.Sandbox)
	expect.Equal(t, v.Kind(), csp.KindList)
}

func TestSetIfAbsent(t *testing.T) {
	h := http.Header{}
	expect.True(t, SetIfAbsent(h, HeaderCSP, "default-src 'self'"))
	expect.False(t, SetIfAbsent(h, HeaderCSP, "default-src 'none'"))
	expect.Equal(t, h.Get(HeaderCSP), "default-src 'self'")
	expect.Equal(t, CSPHeader(true), HeaderCSPReportOnly)
	expect.Equal(t, CSPHeader(false), HeaderCSP)
}

func TestParseResponseCSP(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderCSP, "default-src 'self'")
	h.Set(HeaderCSPReportOnly, "img-src a, img-src b")
	enforced, reportOnly := ParseResponseCSP(h)
	expect.Len(t, enforced, 1)
	expect.Len(t, reportOnly, 2)
}
