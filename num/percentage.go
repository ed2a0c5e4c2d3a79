package num

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Percentage holds a value in the range [0, 100] with a precision of 0.4% (+-0.2%).
//
// The zero Percentage is 0%.
type Percentage struct {
	code uint8
}

// Two interleaved tables of 128 values cover [0, 100] in 256 steps.
var (
	tableA [128]float64
	tableB [128]float64
)

const (
	tolerance = 0.200001
	step      = 100.0 / 999.0
)

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func init() {
	for i := range 128 {
		tableA[i] = min(round1(float64(i*8)*step), 100)
		tableB[i] = min(round1(float64(i*8+4)*step), 100)
	}
}

// NewPercentage constructs a Percentage from a float [0.0, 100.0].
// Values outside the range are clamped.
func NewPercentage(f float64) Percentage {
	if f <= 0 || math.IsNaN(f) {
		return Percentage{0}
	}
	if f >= 100 {
		return Percentage{255}
	}
	return Percentage{uint8(math.Round(f / (4 * step)))}
}

// FromFraction constructs a Percentage from a fraction [0.0, 1.0].
func FromFraction(f float64) Percentage {
	return NewPercentage(f * 100)
}

// ParsePercentage parses "12.5" or "12.5%".
func ParsePercentage(s string) (Percentage, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Percentage{}, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	if f < 0 || f > 100 {
		return Percentage{}, fmt.Errorf("percentage %v out of range [0, 100]", f)
	}
	return NewPercentage(f), nil
}

// ToFloat restores the float representation.
func (p Percentage) ToFloat() float64 {
	index := p.code >> 1
	if p.code&1 == 0 {
		return tableA[index]
	}
	return tableB[index]
}

// Fraction returns the percentage as a fraction [0.0, 1.0].
func (p Percentage) Fraction() float64 {
	return p.ToFloat() / 100
}

func (p Percentage) String() string {
	return fmt.Sprintf("%.1f%%", p.ToFloat())
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `%.1f`, p.ToFloat()), nil
}

func (p *Percentage) UnmarshalJSON(data []byte) error {
	var f float64
	err := json.Unmarshal(data, &f)
	if err != nil {
		return err
	}
	*p = NewPercentage(f)
	return nil
}

func (p Percentage) MarshalYAML() (any, error) {
	return p.ToFloat(), nil
}

func (p *Percentage) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParsePercentage(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*p = parsed
	return nil
}
