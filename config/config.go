package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/errs"
	"github.com/yusing/cspolicy/num"
	"gopkg.in/yaml.v3"
)

// Config is the CSP configuration of an application.
//
// A Config is treated as immutable once loaded.
type Config struct {
	// Policies are the declared policies: either named policies or a single
	// directive mapping, which becomes the default policy.
	Policies *csp.PolicySet `json:"policies,omitempty" yaml:"policies,omitempty"`
	// Select is the default selection. Empty means every declared policy in
	// declaration order.
	Select []string `json:"select,omitempty" yaml:"select,omitempty"`
	// ReportPercentage keeps report-uri and report-to on this percentage
	// of responses. Nil disables sampling.
	ReportPercentage *num.Percentage `json:"report_percentage,omitempty" yaml:"report_percentage,omitempty"`
	// Debug disables CSP on 404 and 500 responses so that error pages
	// with inline scripts and styles render.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Legacy is set when the policies come from CSP_* settings.
	Legacy bool `json:"-" yaml:"-"`
}

// Parse decodes a YAML or JSON document. Unknown top-level keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := new(Config)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration at path, applies the legacy CSP_* settings
// and validates the result. An empty path loads the legacy settings only.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, errs.PrependSubject(path, err)
		}
	}

	legacy, err := ReadLegacy()
	if err != nil {
		return nil, err
	}
	cfg, err = Resolve(cfg, legacy)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Builder returns a policy builder for the declared policies.
func (cfg *Config) Builder() *csp.Builder {
	return csp.NewBuilder(cfg.Policies, cfg.Select...)
}

// Sampler returns the report sampler, or nil when sampling is disabled.
func (cfg *Config) Sampler() *csp.ReportSampler {
	if cfg.ReportPercentage == nil {
		return nil
	}
	return csp.NewReportSampler(*cfg.ReportPercentage)
}

// Marshal renders cfg as YAML.
func (cfg *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
