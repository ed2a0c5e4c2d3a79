package config

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/errs"
)

var (
	ErrMustBeFlag = errors.New("must be true or false")
	ErrMustBeList = errors.New("must be a list")
	// ErrEmptyPrefix is returned for an empty exclude_url_prefixes entry,
	// which would match every path.
	ErrEmptyPrefix = errors.New("empty url prefix matches every path")

	errUnknownDirective = errors.New("unknown directive")
	errFlagWithSources  = errors.New("flag directive takes no sources")
	errNotAPath         = errors.New("url prefix should start with /")
	errDuplicate        = errors.New("selected more than once")
)

// Check returns the problems in cfg. Warnings do not prevent the
// configuration from being used, err does.
func (cfg *Config) Check() (warnings []error, err error) {
	eb := errs.NewBuilder("invalid config")
	warn := func(err error, path ...string) {
		warnings = append(warnings, errs.Subjectf(err, path...))
	}

	for name, p := range cfg.Policies.All() {
		for directive, v := range p.All() {
			path := []string{"policies", name, directive}
			switch {
			case directive == csp.ReportOnly:
				if v.IsSet() && v.Kind() != csp.KindFlag {
					eb.Add(errs.Subjectf(ErrMustBeFlag, path...))
				}
			case directive == csp.IncludeNonceIn:
				if v.Kind() == csp.KindFlag {
					eb.Add(errs.Subjectf(ErrMustBeList, path...))
					continue
				}
				for _, target := range v.Tokens() {
					if !csp.IsKnown(target) || csp.IsPseudo(target) {
						warn(errs.PrependSubject(target, errUnknownDirective), path...)
					}
				}
			case directive == csp.ExcludeURLPrefixes:
				if v.Kind() == csp.KindFlag {
					eb.Add(errs.Subjectf(ErrMustBeList, path...))
					continue
				}
				for _, prefix := range v.Tokens() {
					if prefix == "" {
						eb.Add(errs.Subjectf(ErrEmptyPrefix, path...))
						continue
					}
					if !strings.HasPrefix(prefix, "/") {
						warn(errs.PrependSubject(strconv.Quote(prefix), errNotAPath), path...)
					}
				}
			case csp.IsFlag(directive):
				if v.Len() > 0 {
					warn(errFlagWithSources, path...)
				}
			case !csp.IsKnown(directive):
				warn(errUnknownDirective, path...)
			}
		}
	}

	declared := cfg.Policies.Names()
	if len(declared) == 0 {
		declared = []string{csp.DefaultPolicyName}
	}
	for i, name := range cfg.Select {
		switch {
		case !slices.Contains(declared, name):
			eb.Add(errs.Subjectf(csp.ErrUnknownPolicy, "select", strconv.Quote(name)))
		case slices.Index(cfg.Select, name) != i:
			warn(errDuplicate, "select", strconv.Quote(name))
		}
	}
	return warnings, eb.Error()
}

// Validate is Check with the warnings logged.
func (cfg *Config) Validate() error {
	warnings, err := cfg.Check()
	for _, w := range warnings {
		errs.LogWarn("config", w)
	}
	return err
}
