// Package cli implements the sliceviewer command-line interface.
//
// The root command opens a volume in the terminal viewer. Subcommands
// export slices to image files, serve them over HTTP, convert volumes and
// print volume statistics. All of them share the input and intensity
// window flags:
//
//	sliceviewer -i head.vol
//	sliceviewer export -i head.vol --axis z --zoom 10 --format tiff
//	sliceviewer serve -i ct.dcm --dicomMin -200 --dicomMax 800
//
// # Errors
//
// A missing input prints the usage text. Malformed flags are reported and
// treated as a help request. An unrecognized file extension is logged and
// the command exits without displaying anything.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sliceviewer/pkg/config"
	"sliceviewer/pkg/importer"
	"sliceviewer/pkg/shell"
	"sliceviewer/pkg/volume"
)

// options holds the flags shared by every command.
type options struct {
	input      string
	configPath string
	dicomMin   int
	dicomMax   int
	verbose    bool
}

// errSkip ends a command quietly after the reason has been reported.
var errSkip = errors.New("skip")

// Execute runs the sliceviewer CLI.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if errors.Is(err, errSkip) {
		return nil
	}
	return err
}

// NewRootCommand builds the command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	logger := newLogger(stderr, log.InfoLevel)
	cfg := config.DefaultConfig()

	root := &cobra.Command{
		Use:           "sliceviewer",
		Short:         "Display a volume as three orthogonal slice views",
		Long:          "sliceviewer loads a vol, pgm3d or sdp volume (or DICOM data) and shows its X, Y and Z slices with adjustable position and sampling grid size.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			if opts.verbose || cfg.Output.Verbose {
				logger.SetLevel(log.DebugLevel)
			}
			if !cmd.Flags().Changed("dicomMin") {
				opts.dicomMin = cfg.Dicom.Min
			}
			if !cmd.Flags().Changed("dicomMax") {
				opts.dicomMax = cfg.Dicom.Max
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), img, zoomSettings(cfg))
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		logger.Error("Error checking program options", "err", err)
		_ = cmd.Help()
		return errSkip
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.input, "input", "i", "", "vol file (.vol), pgm3d (.p3d, .pgm3d or .pgm with 3 dims), sdp (sequence of discrete points) or DICOM (.dcm) file")
	pf.IntVar(&opts.dicomMin, "dicomMin", cfg.Dicom.Min, "minimum density threshold on Hounsfield scale")
	pf.IntVar(&opts.dicomMax, "dicomMax", cfg.Dicom.Max, "maximum density threshold on Hounsfield scale")
	pf.StringVar(&opts.configPath, "config", "sliceviewer.yaml", "configuration file (yaml or toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newExportCmd(opts, cfg))
	root.AddCommand(newServeCmd(opts, cfg))
	root.AddCommand(newInfoCmd(opts))
	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newInitCmd(opts))

	return root
}

// load imports the input volume. Without an input it prints the usage
// text, and unknown extensions are only logged; both end the command
// with errSkip.
func (o *options) load(cmd *cobra.Command) (*volume.Image3D, error) {
	logger := loggerFromContext(cmd.Context())
	if o.input == "" {
		logger.Error("The file name was not defined")
		_ = cmd.Usage()
		return nil, errSkip
	}
	if o.dicomMin >= o.dicomMax {
		return nil, fmt.Errorf("dicomMin %d must be below dicomMax %d", o.dicomMin, o.dicomMax)
	}

	prog := newProgress(logger)
	img, err := importer.Load(o.input, importer.Options{
		Window: importer.NewRescaling(o.dicomMin, o.dicomMax, 0, 255),
		Logger: logger,
	})
	if errors.Is(err, importer.ErrUnsupportedFormat) {
		logger.Info("File extension not recognized", "ext", importer.Extension(o.input))
		return nil, errSkip
	}
	if err != nil {
		return nil, err
	}
	prog.done("Imported volume", "size", img.Domain().Size())
	return img, nil
}

func zoomSettings(cfg *config.Config) shell.ZoomSettings {
	return shell.ZoomSettings{Min: cfg.Zoom.Min, Max: cfg.Zoom.Max, Scale1: cfg.Zoom.Scale1}
}
