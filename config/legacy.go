package config

import (
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/env"
	"github.com/yusing/cspolicy/errs"
	"github.com/yusing/cspolicy/num"
)

const (
	legacyPrefix        = "CSP_"
	reportPercentageKey = legacyPrefix + "REPORT_PERCENTAGE"
)

var (
	ErrLegacyConflict   = errors.New("legacy CSP_* settings cannot be combined with declared policies")
	ErrLegacyPercentage = errors.New("must be a fraction between 0 and 1")
)

// Legacy holds the deprecated per-directive CSP_* settings,
// e.g. CSP_IMG_SRC="'self',cdn.example.com".
type Legacy struct {
	// Policy holds the directives and pseudo-directives that were set.
	Policy           *csp.Policy
	ReportPercentage *num.Percentage
	// Keys are the recognized settings that were set.
	Keys []string
	// Unknown are CSP_* settings that match no directive.
	Unknown []string
}

// LegacyKey returns the setting name of directive, e.g. CSP_IMG_SRC.
func LegacyKey(directive string) string {
	return legacyPrefix + strings.ToUpper(strings.ReplaceAll(directive, "-", "_"))
}

// ReadLegacy reads the legacy settings from the environment.
//
// Lists are comma separated, flags and CSP_REPORT_ONLY are booleans and
// CSP_REPORT_PERCENTAGE is a fraction between 0 and 1.
func ReadLegacy() (*Legacy, error) {
	l := &Legacy{Policy: csp.NewPolicy()}
	eb := errs.NewBuilder("invalid legacy settings")

	for _, directive := range slices.Concat(csp.Directives, csp.PseudoDirectives) {
		key := LegacyKey(directive)
		if !env.Has(key) {
			continue
		}
		l.Keys = append(l.Keys, key)
		if csp.IsFlag(directive) || directive == csp.ReportOnly {
			on, err := env.GetEnvBool(key, false)
			if err != nil {
				eb.Add(err)
				continue
			}
			l.Policy.SetFlag(directive, on)
			continue
		}
		l.Policy.SetList(directive, env.GetEnvCommaSep(key, nil)...)
	}

	if env.Has(reportPercentageKey) {
		l.Keys = append(l.Keys, reportPercentageKey)
		f, err := env.GetEnvFloat(reportPercentageKey, 0)
		switch {
		case err != nil:
			eb.Add(err)
		case f < 0 || f > 1:
			eb.AddSubject(reportPercentageKey, ErrLegacyPercentage)
		default:
			p := num.FromFraction(f)
			l.ReportPercentage = &p
		}
	}

	for _, key := range env.Keys(legacyPrefix) {
		if !slices.Contains(l.Keys, key) {
			l.Unknown = append(l.Unknown, key)
		}
	}

	if err := eb.Error(); err != nil {
		return nil, err
	}
	return l, nil
}

// Empty reports whether no recognized legacy setting is set.
func (l *Legacy) Empty() bool {
	return l == nil || len(l.Keys) == 0
}

// Resolve combines cfg with the legacy settings.
//
// When cfg declares policies, any legacy setting is an error. Otherwise the
// legacy settings become the default policy, with a deprecation warning.
// Unknown CSP_* settings are only warned about.
func Resolve(cfg *Config, legacy *Legacy) (*Config, error) {
	if legacy != nil && len(legacy.Unknown) > 0 {
		log.Warn().Strs("settings", legacy.Unknown).Msg("ignoring unknown CSP settings")
	}
	if legacy.Empty() {
		return cfg, nil
	}
	if cfg.Policies.Len() > 0 {
		return nil, errs.PrependSubject(strings.Join(legacy.Keys, ", "), ErrLegacyConflict)
	}

	log.Warn().
		Strs("settings", legacy.Keys).
		Msg("CSP_* settings are deprecated, convert them with `cspgen migrate`")

	out := *cfg
	out.Policies = csp.NewPolicySet().Set(csp.DefaultPolicyName, legacy.Policy.Clone())
	if out.ReportPercentage == nil {
		out.ReportPercentage = legacy.ReportPercentage
	}
	out.Legacy = true
	return &out, nil
}

// Migrate renders the legacy settings in the configuration file format.
func Migrate(legacy *Legacy) ([]byte, error) {
	cfg := &Config{}
	if !legacy.Empty() {
		cfg.Policies = csp.NewPolicySet().Set(csp.DefaultPolicyName, legacy.Policy)
		cfg.ReportPercentage = legacy.ReportPercentage
	}
	return cfg.Marshal()
}
