package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sliceviewer/pkg/config"
)

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil {
				return fmt.Errorf("%s already exists", opts.configPath)
			}
			if err := config.CreateDefaultConfigFile(opts.configPath); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote configuration", "path", opts.configPath)
			return nil
		},
	}
}
