package csp

import "strings"

// Result is one compiled policy.
type Result struct {
	// Name is the policy name in the PolicySet it was built from.
	Name               string
	Policy             string
	ReportOnly         bool
	ExcludeURLPrefixes []string
}

// Excludes reports whether the policy must not be emitted for path.
func (r Result) Excludes(path string) bool {
	for _, prefix := range r.ExcludeURLPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (r Result) clone() Result {
	if r.ExcludeURLPrefixes != nil {
		r.ExcludeURLPrefixes = append([]string(nil), r.ExcludeURLPrefixes...)
	}
	return r
}

// Compile renders p as a header value.
//
// Flags render as the bare directive name when on and are omitted when
// off. Tokens are joined as-is, nothing is escaped. report-uri and
// report-to follow the other directives. When nonce is not empty it is
// appended to every directive listed in include_nonce_in (default-src when
// the policy does not carry the key), creating directives that are absent.
func Compile(p *Policy, nonce string) Result {
	var (
		res            Result
		includeNonceIn = []string{DefaultSrc}
		reporting      ordered[string]
		parts          ordered[string]
	)
	for k, v := range p.All() {
		switch k {
		case ReportOnly:
			res.ReportOnly = v.Enabled()
			continue
		case IncludeNonceIn:
			if v.IsSet() {
				includeNonceIn = v.Tokens()
			}
			continue
		case ExcludeURLPrefixes:
			res.ExcludeURLPrefixes = v.Tokens()
			continue
		case ReportURI, ReportTo:
			if v.Len() > 0 {
				reporting.set(k, strings.Join(v.Tokens(), " "))
			}
			continue
		}
		switch v.Kind() {
		case KindFlag:
			if v.Enabled() {
				parts.set(k, "")
			}
		case KindList:
			parts.set(k, strings.Join(v.Tokens(), " "))
		}
	}

	for _, k := range []string{ReportURI, ReportTo} {
		if v, ok := reporting.get(k); ok {
			parts.set(k, v)
		}
	}

	if nonce != "" {
		src := NonceSource(nonce)
		for _, directive := range includeNonceIn {
			cur, _ := parts.get(directive)
			parts.set(directive, strings.TrimSpace(cur+" "+src))
		}
	}

	rendered := make([]string, 0, parts.len())
	for k, v := range parts.all() {
		rendered = append(rendered, strings.TrimSpace(k+" "+v))
	}
	res.Policy = strings.Join(rendered, "; ")
	return res
}
