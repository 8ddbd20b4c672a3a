package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"sliceviewer/pkg/stats"
)

func newInfoCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the domain and intensity statistics of the volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := opts.load(cmd)
			if err != nil {
				return err
			}
			info := stats.Info(opts.input, img)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			logger := loggerFromContext(cmd.Context())
			logger.Info("Domain", "lower", info.Lower, "upper", info.Upper, "size", info.Size)
			logger.Info("Intensity",
				"min", info.Stats.Min,
				"max", info.Stats.Max,
				"mean", info.Stats.Mean,
				"stddev", info.Stats.StdDev)
			logger.Info("Content", "entropy", info.Stats.Entropy, "nonzero", info.Stats.NonZero, "voxels", info.Stats.Count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the statistics as JSON on stdout")
	return cmd
}
