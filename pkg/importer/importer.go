// Package importer loads 3D voxel images from the file formats the viewer
// accepts. The importer is chosen at runtime from the file extension.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"sliceviewer/pkg/volume"
)

// ErrUnsupportedFormat is returned when no importer handles an extension.
var ErrUnsupportedFormat = errors.New("file extension not recognized")

// Importer reads a volume from path.
type Importer interface {
	Import(path string) (*volume.Image3D, error)
}

// Options configures importer selection.
type Options struct {
	// Window rescales medical intensities into 0..255.
	Window Rescaling

	// Logger receives progress messages. Nil means log.Default().
	Logger *log.Logger
}

// DefaultOptions returns the options used when no configuration is given:
// a -1000..3000 Hounsfield window.
func DefaultOptions() Options {
	return Options{Window: NewRescaling(-1000, 3000, 0, 255)}
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Extension returns the part of path after its last dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// ForPath returns the importer for the extension of path.
func ForPath(path string, opts Options) (Importer, error) {
	switch ext := Extension(path); ext {
	case "vol", "p3d", "pgm3d", "pgm3D", "pgm", "sdp":
		return &Standard{logger: opts.logger()}, nil
	case "dcm":
		return &Medical{Window: opts.Window, logger: opts.logger()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load selects an importer for path and runs it.
func Load(path string, opts Options) (*volume.Image3D, error) {
	imp, err := ForPath(path, opts)
	if err != nil {
		return nil, err
	}
	img, err := imp.Import(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	opts.logger().Info("Imported", "path", path, "domain", img.Domain())
	return img, nil
}
