package num

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEncodingPrecision(t *testing.T) {
	for i := 0.0; i <= 100.0; i += 0.1 {
		p := NewPercentage(i)
		got := p.ToFloat()
		if diff := math.Abs(got - i); diff > tolerance {
			t.Errorf("Encoding mismatch: %.1f%% encoded=0x%02X decoded=%.3f diff=%.3f",
				i, p.code, got, diff)
		}
	}
}

func TestBoundaries(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-5, 0},
		{100, 100},
		{120, 100},
		{10, 10},
	}
	for _, tt := range tests {
		if got := NewPercentage(tt.in).ToFloat(); got != tt.want {
			t.Errorf("NewPercentage(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromFraction(t *testing.T) {
	if got := FromFraction(0.1).ToFloat(); got != 10 {
		t.Errorf("FromFraction(0.1) = %v, want 10", got)
	}
	if got := FromFraction(1).Fraction(); got != 1 {
		t.Errorf("FromFraction(1).Fraction() = %v, want 1", got)
	}
}

func TestParsePercentage(t *testing.T) {
	for _, s := range []string{"10", "10%", " 10.0 % "} {
		p, err := ParsePercentage(s)
		if err != nil {
			t.Fatalf("ParsePercentage(%q): %v", s, err)
		}
		if p.ToFloat() != 10 {
			t.Errorf("ParsePercentage(%q) = %v", s, p)
		}
	}
	for _, s := range []string{"", "abc", "101", "-1"} {
		if _, err := ParsePercentage(s); err == nil {
			t.Errorf("ParsePercentage(%q): expected error", s)
		}
	}
}

func TestUnmarshalYAML(t *testing.T) {
	var v struct {
		P Percentage `yaml:"p"`
	}
	if err := yaml.Unmarshal([]byte("p: 25"), &v); err != nil {
		t.Fatal(err)
	}
	if math.Abs(v.P.ToFloat()-25) > tolerance {
		t.Errorf("got %v", v.P)
	}
	if err := yaml.Unmarshal([]byte("p: 250"), &v); err == nil {
		t.Error("expected out of range error")
	}
}

func TestStringFormat(t *testing.T) {
	p := NewPercentage(42.8)
	if s := p.String(); s[len(s)-1] != '%' {
		t.Errorf("Percentage.String() = %q, missing %% sign", s)
	}
}

func BenchmarkNewPercentage(b *testing.B) {
	for b.Loop() {
		_ = NewPercentage(42.8)
	}
}
