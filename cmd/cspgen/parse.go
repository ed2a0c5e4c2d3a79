package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/config"
	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/http/httpheaders"
)

var errNoPolicy = errors.New("no policy in header")

func newParseCmd() *cobra.Command {
	var reportOnly bool
	cmd := &cobra.Command{
		Use:   "parse HEADER...",
		Short: "Convert CSP header values into a configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policies := httpheaders.ParseCSP(args...)
			if len(policies) == 0 {
				return errNoPolicy
			}
			cfg := &config.Config{Policies: policySet(policies, reportOnly)}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&reportOnly, "report-only", false, "Mark the policies report only")
	return cmd
}

// policySet names the first policy default and the others policy-N.
func policySet(policies []*csp.Policy, reportOnly bool) *csp.PolicySet {
	set := csp.NewPolicySet()
	for i, p := range policies {
		if reportOnly {
			p.SetFlag(csp.ReportOnly, true)
		}
		name := csp.DefaultPolicyName
		if i > 0 {
			name = "policy-" + strconv.Itoa(i+1)
		}
		set.Set(name, p)
	}
	return set
}
