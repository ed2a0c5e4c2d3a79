// Package main is the entry point for the cspgen binary.
// It renders, checks and serves Content-Security-Policy configurations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/env"
	"github.com/yusing/cspolicy/logging"
	"github.com/yusing/cspolicy/version"
)

const defaultLogLevel = "info"

type rootOptions struct {
	configPath string
	logLevel   string
	pretty     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for cspgen
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "cspgen",
		Short: "Content-Security-Policy generator",
		Long: `cspgen builds Content-Security-Policy headers from a YAML or JSON
configuration and the legacy CSP_* environment settings.

Example:
  cspgen render --config csp.yml --select default --nonce abc123
  cspgen parse "default-src 'self'; img-src cdn.example.com"
  CSP_DEFAULT_SRC="'self'" cspgen migrate > csp.yml`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(logging.Config{
				Level:  opts.logLevel,
				Pretty: opts.pretty,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", env.GetEnvString("CSPGEN_CONFIG", ""), "Path to configuration file (YAML or JSON)")
	flags.StringVarP(&opts.logLevel, "log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human readable log output")

	rootCmd.AddCommand(
		newRenderCmd(opts),
		newCheckCmd(opts),
		newParseCmd(),
		newMigrateCmd(),
		newServeCmd(opts),
	)
	return rootCmd
}

func versionString() string {
	if v := version.Get(); !v.IsZero() {
		return v.String()
	}
	return version.Raw()
}
