package csp_test

import (
	"testing"

	. "github.com/yusing/cspolicy/csp"
	expect "github.com/yusing/cspolicy/testing"
)

func TestMergeUpdateAppends(t *testing.T) {
	base := NewPolicy().SetList(ImgSrc, "a")
	got := Merge(base, nil, NewPolicy().SetList(ImgSrc, "b"))
	v, ok := got.Get(ImgSrc)
	expect.True(t, ok)
	expect.Equal(t, v.Tokens(), []string{"a", "b"})
}

func TestMergeReplaceOverwrites(t *testing.T) {
	base := NewPolicy().SetList(ImgSrc, "a")
	got := Merge(base, NewPolicy().SetList(ImgSrc, "b"), nil)
	v, _ := got.Get(ImgSrc)
	expect.Equal(t, v.Tokens(), []string{"b"})
}

func TestMergeReplaceUnsetDrops(t *testing.T) {
	base := NewPolicy().SetList(DefaultSrc, SourceSelf).SetList(ReportURI, "/r")
	got := Merge(base, NewPolicy().Set(ReportURI, Unset()), nil)
	expect.Equal(t, Compile(got, "").Policy, "default-src 'self'")
}

func TestMergeReplaceThenUpdate(t *testing.T) {
	base := NewPolicy().SetList(ImgSrc, "a")
	got := Merge(base, NewPolicy().SetList(ImgSrc, "b"), NewPolicy().SetList(ImgSrc, "c"))
	v, _ := got.Get(ImgSrc)
	expect.Equal(t, v.Tokens(), []string{"b", "c"})
}

func TestMergeUpdateMissing(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		got := Merge(NewPolicy(), nil, NewPolicy().SetList(ImgSrc, "example.com"))
		v, _ := got.Get(ImgSrc)
		expect.Equal(t, v.Tokens(), []string{"example.com"})
	})
	t.Run("unset", func(t *testing.T) {
		got := Merge(DefaultPolicy(), nil, NewPolicy().SetList(ImgSrc, "example.com"))
		expect.PolicyEqual(t, Compile(got, "").Policy, "default-src 'self'; img-src example.com")
	})
	t.Run("update with unset is ignored", func(t *testing.T) {
		got := Merge(NewPolicy().SetList(ImgSrc, "a"), nil, NewPolicy().Set(ImgSrc, Unset()))
		v, _ := got.Get(ImgSrc)
		expect.Equal(t, v.Tokens(), []string{"a"})
	})
}

func TestMergeReportOnlyIgnoresUpdate(t *testing.T) {
	base := DefaultPolicy()
	got := Merge(base, nil, NewPolicy().SetFlag(ReportOnly, true))
	expect.False(t, Compile(got, "").ReportOnly)

	got = Merge(base, NewPolicy().SetFlag(ReportOnly, true), nil)
	expect.True(t, Compile(got, "").ReportOnly)
}

func TestMergeFlags(t *testing.T) {
	base := DefaultPolicy()
	got := Merge(base, nil, NewPolicy().SetFlag(UpgradeInsecureRequests, true))
	expect.PolicyEqual(t, Compile(got, "").Policy, "default-src 'self'; upgrade-insecure-requests")

	got = Merge(NewPolicy().SetFlag(Sandbox, true), nil, NewPolicy().SetList(Sandbox, "allow-forms"))
	expect.Equal(t, Compile(got, "").Policy, "sandbox allow-forms")
}

func TestMergeOrder(t *testing.T) {
	base := NewPolicy().SetList(DefaultSrc, SourceSelf).SetList(ImgSrc, "a")
	replace := NewPolicy().SetList(FontSrc, "f").SetList(DefaultSrc, SourceNone)
	update := NewPolicy().SetList(MediaSrc, "m").SetList(ImgSrc, "b")
	got := Merge(base, replace, update)
	expect.Equal(t, got.Directives(), []string{DefaultSrc, ImgSrc, FontSrc, MediaSrc})
	expect.Equal(t, Compile(got, "").Policy, "default-src 'none'; img-src a b; font-src f; media-src m")
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := NewPolicy().SetList(ImgSrc, "a")
	replace := NewPolicy().SetList(FontSrc, "f")
	update := NewPolicy().SetList(ImgSrc, "b").SetList(FontSrc, "g")

	got := Merge(base, replace, update)
	got.SetList(ScriptSrc, "s")

	expect.Equal(t, Compile(base, "").Policy, "img-src a")
	expect.Equal(t, Compile(replace, "").Policy, "font-src f")
	expect.Equal(t, Compile(update, "").Policy, "img-src b; font-src g")
	v, _ := got.Get(FontSrc)
	expect.Equal(t, v.Tokens(), []string{"f", "g"})
}
