package csp

import (
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/yusing/cspolicy/errs"
)

// BuildOptions are the per-response instructions for Builder.Build.
// Every field is optional.
type BuildOptions struct {
	// Config overlays the declared policies by name. When Select is empty,
	// only the policies in Config are built.
	Config *PolicySet
	// Replace overwrites directives per policy name.
	Replace *PolicySet
	// Update appends to directives per policy name.
	Update *PolicySet
	// Select names the policies to build, in output order.
	Select []string
	// Nonce is added to the directives listed in include_nonce_in.
	Nonce string
}

func (opts BuildOptions) isStatic() bool {
	return opts.Config == nil && opts.Replace.Len() == 0 && opts.Update.Len() == 0 && opts.Nonce == ""
}

// Builder compiles declared policies together with per-response options.
// A Builder is immutable and safe for concurrent use.
type Builder struct {
	declared *PolicySet
	order    []string

	// compiled static builds, keyed by selection; nil when a declared
	// policy holds deferred tokens
	static *xsync.Map[string, []Result]
}

// NewBuilder creates a Builder from the declared policies.
//
// Each declared policy is overlaid onto DefaultPolicy. When nothing is
// declared the set holds DefaultPolicyName only. order is the default
// selection; it falls back to the declaration order.
func NewBuilder(declared *PolicySet, order ...string) *Builder {
	defs := Definitions(declared)
	if len(order) == 0 {
		order = defs.Names()
	}
	b := &Builder{
		declared: defs,
		order:    slices.Clone(order),
	}
	if !hasDeferred(defs) {
		b.static = xsync.NewMap[string, []Result]()
	}
	return b
}

func hasDeferred(set *PolicySet) bool {
	for _, p := range set.All() {
		for _, v := range p.All() {
			if v.deferred() {
				return true
			}
		}
	}
	return false
}

// Definitions returns declared with every policy overlaid onto
// DefaultPolicy.
func Definitions(declared *PolicySet) *PolicySet {
	out := NewPolicySet()
	if declared.Len() == 0 {
		return out.Set(DefaultPolicyName, DefaultPolicy())
	}
	for name, p := range declared.All() {
		def := DefaultPolicy()
		for k, v := range p.All() {
			def.d.set(k, v.Clone())
		}
		out.Set(name, def)
	}
	return out
}

// Declared returns a copy of the declared policy definitions.
func (b *Builder) Declared() *PolicySet {
	return b.declared.Clone()
}

// DefaultSelection returns the names built when no selection is given.
func (b *Builder) DefaultSelection() []string {
	return slices.Clone(b.order)
}

// Names returns every policy name opts can select: the declared names
// followed by names only present in opts.Config.
func (b *Builder) Names(opts BuildOptions) []string {
	names := b.declared.Names()
	for _, name := range opts.Config.Names() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Build compiles the selected policies in selection order.
//
// Selecting a name that is neither declared nor in opts.Config returns an
// error wrapping ErrUnknownPolicy.
func (b *Builder) Build(opts BuildOptions) ([]Result, error) {
	static := b.static != nil && opts.isStatic()
	var cacheKey string
	if static {
		cacheKey = strings.Join(opts.Select, "\x00")
		if cached, ok := b.static.Load(cacheKey); ok {
			return cloneResults(cached), nil
		}
	}

	policies := b.declared
	selected := opts.Select
	if opts.Config != nil {
		policies = overlay(b.declared, opts.Config)
		if len(selected) == 0 {
			selected = opts.Config.Names()
		}
	}
	if len(selected) == 0 {
		selected = b.order
	}

	results := make([]Result, 0, len(selected))
	for _, name := range selected {
		base, ok := policies.Get(name)
		if !ok {
			return nil, errs.PrependSubject(name, ErrUnknownPolicy)
		}
		replace, _ := opts.Replace.Get(name)
		update, _ := opts.Update.Get(name)
		res := Compile(Merge(base, replace, update), opts.Nonce)
		res.Name = name
		results = append(results, res)
	}

	if static {
		b.static.Store(cacheKey, cloneResults(results))
	}
	return results, nil
}

// overlay returns base with the policies of top replacing those of the same
// name. Policies are shared, not copied; Merge never modifies them.
func overlay(base, top *PolicySet) *PolicySet {
	out := NewPolicySet()
	for name, p := range base.All() {
		out.p.set(name, p)
	}
	for name, p := range top.All() {
		out.p.set(name, p)
	}
	return out
}

func cloneResults(results []Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r.clone()
	}
	return out
}
