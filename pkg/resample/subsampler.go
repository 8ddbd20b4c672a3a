// Package resample maps a 2D scalar image onto a coarser or finer pixel
// grid for display.
package resample

import (
	"errors"
	"fmt"
	"math"

	"sliceviewer/pkg/geometry"
)

// ErrInvalidGridSize is returned for grid sizes that are not finite and
// strictly positive.
var ErrInvalidGridSize = errors.New("grid size must be a positive finite number")

// Subsampler maps points of a sub-sampled domain back onto the source
// domain it was derived from.
type Subsampler struct {
	source geometry.Domain2
	grid   [2]float64
	shift  geometry.Point2
	out    geometry.Domain2
}

// NewSubsampler builds the sub-sampling of source with the given grid size
// on each axis. Output bounds are the source bounds divided by the grid
// size, lower rounded up and upper rounded down.
func NewSubsampler(source geometry.Domain2, grid [2]float64, shift geometry.Point2) (*Subsampler, error) {
	s := &Subsampler{source: source, grid: grid, shift: shift}
	for d := range grid {
		g := grid[d]
		if !(g > 0) || math.IsInf(g, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGridSize, g)
		}
		s.out.Lower[d] = int(math.Ceil(float64(source.Lower[d]) / g))
		s.out.Upper[d] = int(math.Floor(float64(source.Upper[d]) / g))
		if s.out.Upper[d] < s.out.Lower[d] {
			// a grid larger than the whole extent still yields one sample
			s.out.Upper[d] = s.out.Lower[d]
		}
	}
	return s, nil
}

// Domain returns the sub-sampled domain.
func (s *Subsampler) Domain() geometry.Domain2 { return s.out }

// Source returns the domain being sampled.
func (s *Subsampler) Source() geometry.Domain2 { return s.source }

// Map returns the source point sampled for p. Coordinates are scaled by
// the grid size and truncated towards negative infinity; points landing
// outside the source domain are clamped onto its border.
func (s *Subsampler) Map(p geometry.Point2) geometry.Point2 {
	var q geometry.Point2
	for d := range p {
		q[d] = int(math.Floor(float64(p[d])*s.grid[d])) + s.shift[d]
	}
	return s.source.Clamp(q)
}
