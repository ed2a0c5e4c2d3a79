package csp_test

import (
	"slices"
	"strings"
	"testing"

	. "github.com/yusing/cspolicy/csp"
	"pgregory.net/rapid"
)

var (
	genToken     = rapid.StringMatching(`[a-z0-9.:/'-]{1,12}`)
	genDirective = rapid.SampledFrom(slices.Concat(Directives, []string{"foo-src", "bar-src"}))
)

func genPolicy(t *rapid.T, label string) *Policy {
	p := NewPolicy()
	n := rapid.IntRange(0, 6).Draw(t, label+"_len")
	for range n {
		directive := genDirective.Draw(t, label+"_directive")
		switch rapid.IntRange(0, 2).Draw(t, label+"_kind") {
		case 0:
			p.Set(directive, Unset())
		case 1:
			p.SetFlag(directive, rapid.Bool().Draw(t, label+"_flag"))
		default:
			p.SetList(directive, rapid.SliceOfN(genToken, 0, 4).Draw(t, label+"_tokens")...)
		}
	}
	return p
}

func TestPropertyUpdateIsAdditive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		directive := genDirective.Draw(t, "directive")
		a := rapid.SliceOfN(genToken, 1, 5).Draw(t, "a")
		b := rapid.SliceOfN(genToken, 1, 5).Draw(t, "b")

		got := Merge(NewPolicy().SetList(directive, a...), nil, NewPolicy().SetList(directive, b...))
		v, _ := got.Get(directive)
		if want := slices.Concat(a, b); !slices.Equal(v.Tokens(), want) {
			t.Fatalf("update of %v with %v: got %v, want %v", a, b, v.Tokens(), want)
		}
	})
}

func TestPropertyReplaceOverwrites(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := genPolicy(t, "base")
		directive := genDirective.Draw(t, "directive")
		b := rapid.SliceOfN(genToken, 0, 5).Draw(t, "b")

		got := Merge(base, NewPolicy().SetList(directive, b...), nil)
		v, _ := got.Get(directive)
		if !slices.Equal(v.Tokens(), b) {
			t.Fatalf("replace with %v: got %v", b, v.Tokens())
		}
	})
}

func TestPropertyMergeKeepsBase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := genPolicy(t, "base")
		replace := genPolicy(t, "replace")
		update := genPolicy(t, "update")

		before := Compile(base, "")
		got := Merge(base, replace, update)
		got.SetList(DefaultSrc, "mutated")

		if after := Compile(base, ""); after.Policy != before.Policy {
			t.Fatalf("base changed: %q -> %q", before.Policy, after.Policy)
		}
		if dirs := got.Directives(); !slices.Equal(dirs[:base.Len()], base.Directives()) {
			t.Fatalf("base order not kept: %v, base %v", dirs, base.Directives())
		}
	})
}

func TestPropertyCompileDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		declared := genPolicy(t, "declared")
		nonce := rapid.StringMatching(`[A-Za-z0-9+/]{0,8}`).Draw(t, "nonce")

		b := NewBuilder(NewPolicySet().Set(DefaultPolicyName, declared))
		first, err := b.Build(BuildOptions{Nonce: nonce})
		if err != nil {
			t.Fatal(err)
		}
		second, err := b.Build(BuildOptions{Nonce: nonce})
		if err != nil {
			t.Fatal(err)
		}
		if first[0].Policy != second[0].Policy {
			t.Fatalf("not deterministic: %q != %q", first[0].Policy, second[0].Policy)
		}
		if strings.Contains(first[0].Policy, "_") {
			t.Fatalf("pseudo-directive rendered: %q", first[0].Policy)
		}
		if nonce != "" && !strings.Contains(first[0].Policy, NonceSource(nonce)) {
			t.Fatalf("nonce missing: %q", first[0].Policy)
		}
	})
}
