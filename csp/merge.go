package csp

// Merge applies replace and then update to base and returns the effective
// policy. None of the arguments is modified.
//
// A directive present in replace takes the replace value, even when it is
// unset, which drops the directive. Update values are appended after the
// existing tokens, or set the directive when it is absent or unset.
// Update never changes report_only.
func Merge(base, replace, update *Policy) *Policy {
	out := NewPolicy()
	for k, v := range base.All() {
		if rv, ok := replace.Get(k); ok {
			v = rv
		}
		out.d.set(k, v.Clone())
	}
	for k, v := range replace.All() {
		if !base.Has(k) {
			out.d.set(k, v.Clone())
		}
	}
	for k, v := range update.All() {
		if !v.IsSet() || k == ReportOnly {
			continue
		}
		cur, _ := out.d.get(k)
		out.d.set(k, cur.Append(v))
	}
	return out
}
