package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sliceviewer/pkg/importer"
	"sliceviewer/pkg/volume"
)

func newConvertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <output.vol|output.p3d>",
		Short: "Write the volume in vol or pgm3d format",
		Long: `Convert imports the input (including DICOM data, windowed with
--dicomMin and --dicomMax) and writes the 8-bit volume to the output file.
The format follows the output extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := writeVolume(args[0], img); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote volume", "path", args[0])
			return nil
		},
	}
}

func writeVolume(path string, img *volume.Image3D) error {
	var write func(w *bufio.Writer) error
	switch importer.Extension(path) {
	case "vol":
		write = func(w *bufio.Writer) error { return importer.WriteVol(w, img) }
	case "p3d", "pgm3d", "pgm3D", "pgm":
		write = func(w *bufio.Writer) error { return importer.WritePGM3D(w, img) }
	default:
		return fmt.Errorf("%w: %s", importer.ErrUnsupportedFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
