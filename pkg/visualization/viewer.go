package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/spatial/r3"

	"sliceviewer/internal/models"
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/resample"
	"sliceviewer/pkg/slice"
	"sliceviewer/pkg/volume"
)

// Scene keeps the placement of the three orthogonal slices inside the
// volume's 3D space. It stands in for a 3D viewer: front ends read the
// placements back to draw them.
type Scene struct {
	mu sync.Mutex

	// placements holds one entry per axis, nil until placed
	placements [3]*models.SlicePlacement

	// revision is bumped on every change
	revision int

	// voxelSize is the physical size of a voxel along each axis
	voxelSize r3.Vec
}

// NewScene creates an empty scene with the given voxel size.
func NewScene(voxelSize r3.Vec) *Scene {
	return &Scene{voxelSize: voxelSize}
}

// Place adds the slice of axis to the scene.
func (s *Scene) Place(axis geometry.Axis, offset int, view *slice.View) {
	s.set(axis, offset, view)
}

// Update moves an already placed slice. An update of a slice that was
// never placed places it.
func (s *Scene) Update(axis geometry.Axis, offset int, view *slice.View) {
	s.set(axis, offset, view)
}

func (s *Scene) set(axis geometry.Axis, offset int, view *slice.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := view.Domain()
	lo := view.Lift(d.Lower)
	hi := view.Lift(d.Upper)

	normal := r3.Vec{}
	switch axis {
	case geometry.X:
		normal.X = 1
	case geometry.Y:
		normal.Y = 1
	case geometry.Z:
		normal.Z = 1
	}

	s.revision++
	s.placements[axis] = &models.SlicePlacement{
		Axis:     axis,
		Offset:   offset,
		Origin:   s.toSpace(lo),
		Corner:   s.toSpace(hi),
		Normal:   normal,
		Width:    d.Width(),
		Height:   d.Height(),
		Revision: s.revision,
	}
}

// toSpace converts a voxel coordinate into scene coordinates.
func (s *Scene) toSpace(p geometry.Point3) r3.Vec {
	return r3.Vec{
		X: float64(p[0]) * s.voxelSize.X,
		Y: float64(p[1]) * s.voxelSize.Y,
		Z: float64(p[2]) * s.voxelSize.Z,
	}
}

// Placement returns the placement of axis, or false if it was never placed.
func (s *Scene) Placement(axis geometry.Axis) (models.SlicePlacement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !axis.Valid() || s.placements[axis] == nil {
		return models.SlicePlacement{}, false
	}
	return *s.placements[axis], true
}

// Placements returns a snapshot of the placed slices in axis order.
func (s *Scene) Placements() []models.SlicePlacement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SlicePlacement
	for _, p := range s.placements {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Revision returns the number of changes applied so far.
func (s *Scene) Revision() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Center returns the midpoint of the volume domain in scene coordinates.
func (s *Scene) Center(d geometry.Domain3) r3.Vec {
	return r3.Scale(0.5, r3.Add(s.toSpace(d.Lower), s.toSpace(d.Upper)))
}

// Formats lists the image encodings SaveSlice understands.
var Formats = []string{"png", "jpg", "jpeg", "tif", "tiff", "bmp"}

// SaveSlice saves a rendered slice, choosing the encoder from the file
// extension.
func SaveSlice(frame *resample.Frame, filename string) error {
	format := strings.TrimPrefix(filepath.Ext(filename), ".")
	if !slices.Contains(Formats, strings.ToLower(format)) {
		return fmt.Errorf("unsupported image format: %q", format)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return Encode(file, frame.Opaque(), format)
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format: %q", format)
	}
}

// SaveSliceSequence renders and saves every slice of img along axis with
// the given grid size.
func SaveSliceSequence(img *volume.Image3D, axis geometry.Axis, gridSize float64, outputDir, format string) (int, error) {
	if !axis.Valid() {
		return 0, fmt.Errorf("invalid axis: %v (must be x, y, or z)", axis)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	d := img.Domain()
	saved := 0
	for pos := d.Lower[axis]; pos <= d.Upper[axis]; pos++ {
		frame, err := slice.Render(img, axis, pos, gridSize)
		if err != nil {
			return saved, err
		}

		name := fmt.Sprintf("slice_%s_%03d.%s", strings.ToLower(axis.String()), pos, format)
		if err := SaveSlice(frame, filepath.Join(outputDir, name)); err != nil {
			return saved, err
		}
		saved++
	}

	return saved, nil
}
