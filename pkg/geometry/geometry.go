// Package geometry provides the integer points, axis-aligned domains and
// axis projections used to cut 2D slices out of a 3D voxel image.
package geometry

import (
	"fmt"
	"strings"
)

// Axis selects one of the three volume axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Axes lists the three axes in order.
var Axes = [3]Axis{X, Y, Z}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Valid reports whether a is one of X, Y or Z.
func (a Axis) Valid() bool {
	return a >= X && a <= Z
}

// ParseAxis accepts "x", "y", "z" in either case, or the indices "0", "1", "2".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "0":
		return X, nil
	case "y", "1":
		return Y, nil
	case "z", "2":
		return Z, nil
	}
	return 0, fmt.Errorf("invalid axis: %q (must be x, y, or z)", s)
}

// MarshalText encodes the axis as its letter.
func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid axis %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText accepts anything ParseAxis does.
func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Point2 is a point of the 2D integer lattice.
type Point2 [2]int

// Point3 is a point of the 3D integer lattice.
type Point3 [3]int

// Pt2 returns the point (x, y).
func Pt2(x, y int) Point2 { return Point2{x, y} }

// Pt3 returns the point (x, y, z).
func Pt3(x, y, z int) Point3 { return Point3{x, y, z} }

// Domain2 is an axis-aligned box of the 2D lattice. Both bounds are inclusive.
type Domain2 struct {
	Lower, Upper Point2
}

// Domain3 is an axis-aligned box of the 3D lattice. Both bounds are inclusive.
type Domain3 struct {
	Lower, Upper Point3
}

// NewDomain2 returns the domain spanned by lower and upper. It returns an
// error if lower is not below or equal to upper on every axis.
func NewDomain2(lower, upper Point2) (Domain2, error) {
	for i := range lower {
		if lower[i] > upper[i] {
			return Domain2{}, fmt.Errorf("invalid domain: lower %v above upper %v", lower, upper)
		}
	}
	return Domain2{Lower: lower, Upper: upper}, nil
}

// NewDomain3 is the 3D counterpart of NewDomain2.
func NewDomain3(lower, upper Point3) (Domain3, error) {
	for i := range lower {
		if lower[i] > upper[i] {
			return Domain3{}, fmt.Errorf("invalid domain: lower %v above upper %v", lower, upper)
		}
	}
	return Domain3{Lower: lower, Upper: upper}, nil
}

// Size returns the number of lattice points on each axis.
func (d Domain2) Size() Point2 {
	return Point2{d.Upper[0] - d.Lower[0] + 1, d.Upper[1] - d.Lower[1] + 1}
}

// Width is the number of points along the first axis.
func (d Domain2) Width() int { return d.Upper[0] - d.Lower[0] + 1 }

// Height is the number of points along the second axis.
func (d Domain2) Height() int { return d.Upper[1] - d.Lower[1] + 1 }

// Contains reports whether p lies inside d.
func (d Domain2) Contains(p Point2) bool {
	return p[0] >= d.Lower[0] && p[0] <= d.Upper[0] &&
		p[1] >= d.Lower[1] && p[1] <= d.Upper[1]
}

// Clamp returns the point of d nearest to p.
func (d Domain2) Clamp(p Point2) Point2 {
	for i := range p {
		p[i] = min(max(p[i], d.Lower[i]), d.Upper[i])
	}
	return p
}

func (d Domain2) String() string {
	return fmt.Sprintf("%v-%v", d.Lower, d.Upper)
}

// Size returns the number of lattice points on each axis.
func (d Domain3) Size() Point3 {
	return Point3{
		d.Upper[0] - d.Lower[0] + 1,
		d.Upper[1] - d.Lower[1] + 1,
		d.Upper[2] - d.Lower[2] + 1,
	}
}

// Contains reports whether p lies inside d.
func (d Domain3) Contains(p Point3) bool {
	for i := range p {
		if p[i] < d.Lower[i] || p[i] > d.Upper[i] {
			return false
		}
	}
	return true
}

// HasOffset reports whether offset is a valid slice position along axis.
func (d Domain3) HasOffset(axis Axis, offset int) bool {
	return axis.Valid() && offset >= d.Lower[axis] && offset <= d.Upper[axis]
}

func (d Domain3) String() string {
	return fmt.Sprintf("%v-%v", d.Lower, d.Upper)
}
