package csp_test

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/yusing/cspolicy/csp"
	expect "github.com/yusing/cspolicy/testing"
)

func namedPolicies() *PolicySet {
	return NewPolicySet().
		Set("default", NewPolicy().SetList(DefaultSrc, SourceSelf, "example.com")).
		Set("report", NewPolicy().SetList(ImgSrc, "test.example.com").SetFlag(ReportOnly, true)).
		Set("a", NewPolicy().SetList(DefaultSrc, "a.example.com")).
		Set("b", NewPolicy().SetList(DefaultSrc, "b.example.com"))
}

func TestBuilderDeclaredOrder(t *testing.T) {
	b := NewBuilder(namedPolicies())
	expect.Equal(t, b.DefaultSelection(), []string{"default", "report", "a", "b"})

	results, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	expect.Len(t, results, 4)
	expect.Equal(t, results[0].Policy, "default-src 'self' example.com")
	expect.PolicyEqual(t, results[1].Policy, "default-src 'self'; img-src test.example.com")
	expect.True(t, results[1].ReportOnly)
	expect.False(t, results[0].ReportOnly)
}

func TestBuilderExplicitOrder(t *testing.T) {
	b := NewBuilder(namedPolicies(), "report", "default")
	results, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	expect.Len(t, results, 2)
	expect.Equal(t, results[0].Name, "report")
	expect.Equal(t, results[1].Name, "default")
}

func TestBuilderSelect(t *testing.T) {
	b := NewBuilder(NewPolicySet().
		Set("b", NewPolicy().SetList(DefaultSrc, "b.example.com")).
		Set("a", NewPolicy().SetList(DefaultSrc, "a.example.com")))

	results, err := b.Build(BuildOptions{Select: []string{"a", "b"}})
	expect.NoError(t, err)
	expect.Len(t, results, 2)
	expect.Equal(t, results[0].Name, "a")
	expect.Equal(t, results[0].Policy, "default-src a.example.com")
	expect.Equal(t, results[1].Name, "b")
	expect.Equal(t, results[1].Policy, "default-src b.example.com")
}

func TestBuilderUnknownPolicy(t *testing.T) {
	b := NewBuilder(nil)
	_, err := b.Build(BuildOptions{Select: []string{"report"}})
	expect.ErrorIs(t, ErrUnknownPolicy, err)
	expect.ErrorContains(t, err, "report")
}

func TestBuilderConfig(t *testing.T) {
	b := NewBuilder(namedPolicies())

	t.Run("overlays and selects", func(t *testing.T) {
		config := Normalize(map[string]any{
			"default-src": []string{SourceNone},
			"img-src":     []string{SourceSelf},
		})
		results, err := b.Build(BuildOptions{Config: config})
		expect.NoError(t, err)
		expect.Len(t, results, 1)
		expect.Equal(t, results[0].Name, "default")
		expect.Equal(t, results[0].Policy, "default-src 'none'; img-src 'self'")
	})

	t.Run("select declared alongside config", func(t *testing.T) {
		config := NewPolicySet().Set("extra", NewPolicy().SetList(ScriptSrc, "cdn.example.com"))
		results, err := b.Build(BuildOptions{Config: config, Select: []string{"extra", "a"}})
		expect.NoError(t, err)
		expect.Len(t, results, 2)
		expect.Equal(t, results[0].Policy, "script-src cdn.example.com")
		expect.Equal(t, results[1].Policy, "default-src a.example.com")
	})

	t.Run("names", func(t *testing.T) {
		config := NewPolicySet().Set("extra", nil).Set("a", nil)
		expect.Equal(t, b.Names(BuildOptions{Config: config}), []string{"default", "report", "a", "b", "extra"})
	})
}

func TestBuilderReplaceUpdatePerName(t *testing.T) {
	b := NewBuilder(namedPolicies())
	results, err := b.Build(BuildOptions{
		Select:  []string{"default", "report"},
		Replace: NewPolicySet().Set("report", NewPolicy().SetList(ImgSrc, "replaced.example.com")),
		Update:  NewPolicySet().Set("default", NewPolicy().SetList(DefaultSrc, "cdn.example.com")),
	})
	expect.NoError(t, err)
	expect.Equal(t, results[0].Policy, "default-src 'self' example.com cdn.example.com")
	expect.PolicyEqual(t, results[1].Policy, "default-src 'self'; img-src replaced.example.com")
}

func TestBuilderDeclaredNotMutated(t *testing.T) {
	declared := namedPolicies()
	b := NewBuilder(declared)
	_, err := b.Build(BuildOptions{
		Update: NewPolicySet().Set("default", NewPolicy().SetList(DefaultSrc, "cdn.example.com")),
	})
	expect.NoError(t, err)

	p, _ := declared.Get("default")
	v, _ := p.Get(DefaultSrc)
	expect.Equal(t, v.Tokens(), []string{SourceSelf, "example.com"})

	results, err := b.Build(BuildOptions{Select: []string{"default"}})
	expect.NoError(t, err)
	expect.Equal(t, results[0].Policy, "default-src 'self' example.com")
}

func TestBuilderCachedResultsAreCopies(t *testing.T) {
	b := NewBuilder(NewPolicySet().Set("default", NewPolicy().SetList(ExcludeURLPrefixes, "/admin")))
	first, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	first[0].ExcludeURLPrefixes[0] = "/changed"
	first[0].Policy = "changed"

	second, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	expect.Equal(t, second[0].Policy, "default-src 'self'")
	expect.Equal(t, second[0].ExcludeURLPrefixes, []string{"/admin"})
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("/report/%d", c.n)
}

func TestBuilderDeferredNotCached(t *testing.T) {
	b := NewBuilder(NewPolicySet().Set("default", NewPolicy().Set(ReportURI, Deferred(&counter{}))))
	first, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	second, err := b.Build(BuildOptions{})
	expect.NoError(t, err)
	expect.Equal(t, first[0].Policy, "default-src 'self'; report-uri /report/1")
	expect.Equal(t, second[0].Policy, "default-src 'self'; report-uri /report/2")
}

func TestBuilderConcurrent(t *testing.T) {
	b := NewBuilder(namedPolicies())
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			opts := BuildOptions{Select: []string{"a", "b"}}
			if i%2 == 0 {
				opts.Nonce = fmt.Sprint(i)
			}
			results, err := b.Build(opts)
			if err != nil || len(results) != 2 {
				t.Errorf("unexpected build result: %v %v", results, err)
			}
		})
	}
	wg.Wait()
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(NewPolicySet().Set("default", NewPolicy().SetList(ImgSrc, "a").SetList("foo-src", "b")))
	p, ok := defs.Get("default")
	expect.True(t, ok)
	expect.Equal(t, p.Len(), len(Directives)+len(PseudoDirectives)+1)
	expect.Equal(t, p.Directives()[p.Len()-1], "foo-src")

	defs = Definitions(nil)
	expect.Equal(t, defs.Names(), []string{DefaultPolicyName})
}
