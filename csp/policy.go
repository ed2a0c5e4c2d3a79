package csp

import (
	"iter"
	"slices"
	"strings"
)

// Policy maps directives to values in insertion order. The order is the
// order directives appear in the compiled header.
//
// Read methods accept a nil *Policy.
type Policy struct {
	d ordered[Value]
}

func NewPolicy() *Policy {
	return &Policy{}
}

func normalizeDirective(directive string) string {
	return strings.ToLower(strings.TrimSpace(directive))
}

// Set stores v under directive.
func (p *Policy) Set(directive string, v Value) *Policy {
	directive = normalizeDirective(directive)
	if directive == "" {
		return p
	}
	p.d.set(directive, v)
	return p
}

// SetList is Set(directive, List(tokens...)).
func (p *Policy) SetList(directive string, tokens ...string) *Policy {
	return p.Set(directive, List(tokens...))
}

// SetFlag is Set(directive, Flag(on)).
func (p *Policy) SetFlag(directive string, on bool) *Policy {
	return p.Set(directive, Flag(on))
}

func (p *Policy) Delete(directive string) *Policy {
	p.d.delete(normalizeDirective(directive))
	return p
}

func (p *Policy) Get(directive string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	return p.d.get(normalizeDirective(directive))
}

func (p *Policy) Has(directive string) bool {
	_, ok := p.Get(directive)
	return ok
}

func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return p.d.len()
}

func (p *Policy) Directives() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.d.keys)
}

func (p *Policy) All() iter.Seq2[string, Value] {
	if p == nil {
		return func(func(string, Value) bool) {}
	}
	return p.d.all()
}

// Clone returns a deep copy of p.
func (p *Policy) Clone() *Policy {
	out := NewPolicy()
	for k, v := range p.All() {
		out.d.set(k, v.Clone())
	}
	return out
}

// DefaultPolicy returns the baseline every declared policy starts from.
func DefaultPolicy() *Policy {
	p := NewPolicy()
	for _, d := range Directives {
		p.d.set(d, Unset())
	}
	p.d.set(DefaultSrc, List(SourceSelf))
	for _, d := range flagDirectives {
		p.d.set(d, Flag(false))
	}
	p.d.set(ReportOnly, Flag(false))
	p.d.set(IncludeNonceIn, List(DefaultSrc))
	p.d.set(ExcludeURLPrefixes, List())
	return p
}

// PolicySet is a named set of policies in declaration order.
//
// Read methods accept a nil *PolicySet.
type PolicySet struct {
	p ordered[*Policy]
}

func NewPolicySet() *PolicySet {
	return &PolicySet{}
}

// Set stores policy under name. A nil policy is stored as an empty one.
func (s *PolicySet) Set(name string, policy *Policy) *PolicySet {
	if policy == nil {
		policy = NewPolicy()
	}
	s.p.set(name, policy)
	return s
}

func (s *PolicySet) Get(name string) (*Policy, bool) {
	if s == nil {
		return nil, false
	}
	return s.p.get(name)
}

func (s *PolicySet) Len() int {
	if s == nil {
		return 0
	}
	return s.p.len()
}

func (s *PolicySet) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.p.keys)
}

func (s *PolicySet) All() iter.Seq2[string, *Policy] {
	if s == nil {
		return func(func(string, *Policy) bool) {}
	}
	return s.p.all()
}

// Clone returns a deep copy of s.
func (s *PolicySet) Clone() *PolicySet {
	out := NewPolicySet()
	for name, p := range s.All() {
		out.p.set(name, p.Clone())
	}
	return out
}
