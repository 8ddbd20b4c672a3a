package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sliceviewer/pkg/config"
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/slice"
	"sliceviewer/pkg/visualization"
)

type exportOpts struct {
	axis   string
	offset int
	zoom   int
	format string
	dir    string
}

func newExportCmd(opts *options, cfg *config.Config) *cobra.Command {
	var eo exportOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write slices of the volume as image files",
		Long: `Export renders slices with the sampling grid of the given zoom value and
writes them to the output directory as slice_<axis>_<offset>.<format>.
Without --offset every slice along the axis is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("zoom") {
				eo.zoom = cfg.Zoom.Scale1
			}
			if eo.format == "" {
				eo.format = cfg.Export.Format
			}
			if eo.dir == "" {
				eo.dir = cfg.Export.Dir
			}

			axes, err := parseAxes(eo.axis)
			if err != nil {
				return err
			}
			zoom := zoomSettings(cfg)
			if eo.zoom < zoom.Min || eo.zoom > zoom.Max {
				return fmt.Errorf("zoom %d outside [%d, %d]", eo.zoom, zoom.Min, zoom.Max)
			}

			img, err := opts.load(cmd)
			if err != nil {
				return err
			}

			single := cmd.Flags().Changed("offset")
			logger := loggerFromContext(cmd.Context())
			gridSize := zoom.GridSize(eo.zoom)
			prog := newProgress(logger)
			total := 0
			for _, a := range axes {
				if !single {
					n, err := visualization.SaveSliceSequence(img, a, gridSize, eo.dir, eo.format)
					total += n
					if err != nil {
						return fmt.Errorf("export %v slices: %w", a, err)
					}
					continue
				}

				if !img.Domain().HasOffset(a, eo.offset) {
					return fmt.Errorf("offset %d outside the %v extent of %v", eo.offset, a, img.Domain())
				}
				frame, err := slice.Render(img, a, eo.offset, gridSize)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(eo.dir, 0755); err != nil {
					return err
				}
				name := fmt.Sprintf("slice_%s_%03d.%s", strings.ToLower(a.String()), eo.offset, eo.format)
				if err := visualization.SaveSlice(frame, filepath.Join(eo.dir, name)); err != nil {
					return err
				}
				total++
			}
			prog.done("Exported slices", "count", total, "dir", eo.dir, "gridSize", gridSize)
			return nil
		},
	}

	cmd.Flags().StringVar(&eo.axis, "axis", "all", "slice axis: x, y, z or all")
	cmd.Flags().IntVar(&eo.offset, "offset", 0, "slice position along the axis (default: every slice)")
	cmd.Flags().IntVar(&eo.zoom, "zoom", 0, "zoom slider value (default: the 1:1 value from the config)")
	cmd.Flags().StringVarP(&eo.format, "format", "f", "", "image format: png, jpg, tiff or bmp (default from config)")
	cmd.Flags().StringVarP(&eo.dir, "output", "o", "", "output directory (default from config)")

	return cmd
}

func parseAxes(s string) ([]geometry.Axis, error) {
	if strings.EqualFold(s, "all") {
		return geometry.Axes[:], nil
	}
	a, err := geometry.ParseAxis(s)
	if err != nil {
		return nil, err
	}
	return []geometry.Axis{a}, nil
}
