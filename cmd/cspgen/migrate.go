package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/config"
)

var errNoLegacySettings = errors.New("no CSP_* settings found")

func newMigrateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert the CSP_* environment settings into a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			legacy, err := config.ReadLegacy()
			if err != nil {
				return err
			}
			if legacy.Empty() {
				return errNoLegacySettings
			}
			data, err := config.Migrate(legacy)
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
