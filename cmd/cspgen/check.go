package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/config"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := new(config.Config)
			if opts.configPath != "" {
				data, err := os.ReadFile(opts.configPath)
				if err != nil {
					return fmt.Errorf("failed to read config file: %w", err)
				}
				cfg, err = config.Parse(data)
				if err != nil {
					return fmt.Errorf("failed to parse config file: %w", err)
				}
			}
			legacy, err := config.ReadLegacy()
			if err != nil {
				return err
			}
			cfg, err = config.Resolve(cfg, legacy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			warnings, err := cfg.Check()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %v\n", w)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
