package csp

import (
	"math/rand/v2"

	"github.com/yusing/cspolicy/num"
)

// ReportSampler keeps violation reporting on a percentage of responses and
// strips report-uri and report-to from the rest.
type ReportSampler struct {
	percentage num.Percentage
	draw       func() float64
}

func NewReportSampler(p num.Percentage) *ReportSampler {
	return &ReportSampler{percentage: p, draw: rand.Float64}
}

func (s *ReportSampler) Percentage() num.Percentage {
	return s.percentage
}

// Keep draws once and reports whether this response keeps reporting.
func (s *ReportSampler) Keep() bool {
	return s.draw()*100 < s.percentage.ToFloat()
}

// Apply draws once. When reporting is not kept, it adds replace
// instructions dropping report-uri and report-to for every name in names,
// on top of the replace instructions already in opts.
func (s *ReportSampler) Apply(opts *BuildOptions, names []string) (kept bool) {
	if s.Keep() {
		return true
	}
	replace := opts.Replace.Clone()
	for _, name := range names {
		p, ok := replace.Get(name)
		if !ok {
			p = NewPolicy()
			replace.Set(name, p)
		}
		p.Set(ReportURI, Unset()).Set(ReportTo, Unset())
	}
	opts.Replace = replace
	return false
}
