// Package slice cuts axis-aligned 2D views out of a 3D volume and renders
// them for display.
package slice

import (
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/resample"
	"sliceviewer/pkg/volume"
)

// View is a read-only 2D window onto one plane of a volume. It holds a
// reference to the volume and reads voxels on demand.
type View struct {
	src    *volume.Image3D
	axis   geometry.Axis
	offset int
	domain geometry.Domain2
	lift   geometry.LiftFunc
}

// New returns the view of src on the plane axis == offset. Like
// geometry.Project it panics when offset is outside the volume.
func New(src *volume.Image3D, axis geometry.Axis, offset int) *View {
	d, lift := geometry.Project(src.Domain(), axis, offset)
	return &View{src: src, axis: axis, offset: offset, domain: d, lift: lift}
}

// Get returns the voxel under p.
func (v *View) Get(p geometry.Point2) uint8 { return v.src.Get(v.lift(p)) }

// Domain returns the slice domain.
func (v *View) Domain() geometry.Domain2 { return v.domain }

// Axis returns the axis the view is orthogonal to.
func (v *View) Axis() geometry.Axis { return v.axis }

// Offset returns the position of the view along its axis.
func (v *View) Offset() int { return v.offset }

// Lift maps a point of the view back into the volume.
func (v *View) Lift(p geometry.Point2) geometry.Point3 { return v.lift(p) }

// Render cuts the plane axis == offset out of src and resamples it with
// gridSize.
func Render(src *volume.Image3D, axis geometry.Axis, offset int, gridSize float64) (*resample.Frame, error) {
	return resample.Resample(New(src, axis, offset), gridSize)
}
