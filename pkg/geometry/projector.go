package geometry

import "fmt"

// LiftFunc maps a point of a slice back into the volume it was cut from.
type LiftFunc func(Point2) Point3

// Drop removes the coordinate of axis from p, keeping the order of the
// two remaining coordinates.
func Drop(p Point3, axis Axis) Point2 {
	var q Point2
	k := 0
	for i := range p {
		if Axis(i) == axis {
			continue
		}
		q[k] = p[i]
		k++
	}
	return q
}

// Insert puts value back at position axis of p.
func Insert(p Point2, axis Axis, value int) Point3 {
	var q Point3
	k := 0
	for i := range q {
		if Axis(i) == axis {
			q[i] = value
			continue
		}
		q[i] = p[k]
		k++
	}
	return q
}

// Project returns the 2D domain obtained by dropping axis from d and the
// function that lifts points of that domain back onto the plane
// axis == offset.
//
// Project panics if axis is not X, Y or Z or if offset lies outside d
// along axis; callers validate with Domain3.HasOffset.
func Project(d Domain3, axis Axis, offset int) (Domain2, LiftFunc) {
	if !d.HasOffset(axis, offset) {
		panic(fmt.Sprintf("geometry: offset %d outside domain %v along %v", offset, d, axis))
	}
	slice := Domain2{Lower: Drop(d.Lower, axis), Upper: Drop(d.Upper, axis)}
	lift := func(p Point2) Point3 {
		return Insert(p, axis, offset)
	}
	return slice, lift
}
