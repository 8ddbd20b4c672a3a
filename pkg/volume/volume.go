// Package volume holds the scalar voxel and pixel containers the viewer
// works on. Intensities are single unsigned bytes.
package volume

import (
	"fmt"

	"sliceviewer/pkg/geometry"
)

// Image2D is a read-only scalar image over a 2D domain.
type Image2D interface {
	// Get returns the intensity at p. p must lie inside Domain().
	Get(p geometry.Point2) uint8

	// Domain returns the box the image is defined on.
	Domain() geometry.Domain2
}

// Image3D is a dense voxel image. Voxels are stored x fastest, then y,
// then z.
type Image3D struct {
	domain geometry.Domain3
	size   geometry.Point3
	data   []uint8
}

// NewImage3D allocates a zero-filled image over d.
func NewImage3D(d geometry.Domain3) *Image3D {
	size := d.Size()
	return &Image3D{
		domain: d,
		size:   size,
		data:   make([]uint8, size[0]*size[1]*size[2]),
	}
}

// FromData wraps data, laid out x fastest, as an image over d.
func FromData(d geometry.Domain3, data []uint8) (*Image3D, error) {
	size := d.Size()
	if n := size[0] * size[1] * size[2]; n != len(data) {
		return nil, fmt.Errorf("volume data has %d voxels, domain %v needs %d", len(data), d, n)
	}
	return &Image3D{domain: d, size: size, data: data}, nil
}

// Domain returns the box the image is defined on.
func (img *Image3D) Domain() geometry.Domain3 { return img.domain }

// Extent returns the number of voxels along axis.
func (img *Image3D) Extent(axis geometry.Axis) int { return img.size[axis] }

// Data exposes the underlying voxel buffer.
func (img *Image3D) Data() []uint8 { return img.data }

func (img *Image3D) index(p geometry.Point3) int {
	x := p[0] - img.domain.Lower[0]
	y := p[1] - img.domain.Lower[1]
	z := p[2] - img.domain.Lower[2]
	return z*img.size[0]*img.size[1] + y*img.size[0] + x
}

// Get returns the voxel at p. It panics if p is outside the domain.
func (img *Image3D) Get(p geometry.Point3) uint8 {
	if !img.domain.Contains(p) {
		panic(fmt.Sprintf("volume: point %v outside domain %v", p, img.domain))
	}
	return img.data[img.index(p)]
}

// Set stores v at p. Points outside the domain are ignored.
func (img *Image3D) Set(p geometry.Point3, v uint8) {
	if !img.domain.Contains(p) {
		return
	}
	img.data[img.index(p)] = v
}

// Grid2D is a dense 2D image, x fastest.
type Grid2D struct {
	domain geometry.Domain2
	width  int
	Pix    []uint8
}

// NewGrid2D allocates a zero-filled image over d.
func NewGrid2D(d geometry.Domain2) *Grid2D {
	return &Grid2D{domain: d, width: d.Width(), Pix: make([]uint8, d.Width()*d.Height())}
}

// Domain returns the box the image is defined on.
func (g *Grid2D) Domain() geometry.Domain2 { return g.domain }

// Get returns the pixel at p. It panics if p is outside the domain.
func (g *Grid2D) Get(p geometry.Point2) uint8 {
	if !g.domain.Contains(p) {
		panic(fmt.Sprintf("volume: point %v outside domain %v", p, g.domain))
	}
	return g.Pix[(p[1]-g.domain.Lower[1])*g.width+p[0]-g.domain.Lower[0]]
}

// Set stores v at p. Points outside the domain are ignored.
func (g *Grid2D) Set(p geometry.Point2, v uint8) {
	if !g.domain.Contains(p) {
		return
	}
	g.Pix[(p[1]-g.domain.Lower[1])*g.width+p[0]-g.domain.Lower[0]] = v
}

// Copy materialises any Image2D into a Grid2D.
func Copy(src Image2D) *Grid2D {
	d := src.Domain()
	g := NewGrid2D(d)
	for y := d.Lower[1]; y <= d.Upper[1]; y++ {
		for x := d.Lower[0]; x <= d.Upper[0]; x++ {
			p := geometry.Pt2(x, y)
			g.Set(p, src.Get(p))
		}
	}
	return g
}
