package version

import (
	"testing"

	expect "github.com/yusing/cspolicy/testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"v1.2.3", New(1, 2, 3)},
		{"v0.10.0-rc.1", New(0, 10, 0)},
		{"1.2.3", Version{}},
		{"feat/nonce", Version{}},
		{"unset", Version{}},
		{"", Version{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expect.Equal(t, Parse(tt.in), tt.want)
		})
	}
}

func TestCompare(t *testing.T) {
	expect.True(t, New(1, 2, 3).IsNewerThan(New(1, 2, 2)))
	expect.True(t, New(2, 0, 0).IsNewerThan(New(1, 9, 9)))
	expect.False(t, New(1, 2, 3).IsNewerThan(New(1, 2, 3)))
	expect.True(t, Version{}.IsZero())
}

func TestText(t *testing.T) {
	var v Version
	expect.NoError(t, v.UnmarshalText([]byte("v3.1.4")))
	b, err := v.MarshalText()
	expect.NoError(t, err)
	expect.Equal(t, string(b), "v3.1.4")
}
