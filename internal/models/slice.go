package models

import (
	"gonum.org/v1/gonum/spatial/r3"

	"sliceviewer/pkg/geometry"
)

// SlicePlacement describes where a slice sits inside the volume's 3D space
type SlicePlacement struct {
	// Axis is the axis the slice is orthogonal to
	Axis geometry.Axis `json:"axis"`

	// Offset is the position of the slice along Axis in voxels
	Offset int `json:"offset"`

	// Origin and Corner are opposite corners of the slice in scene coordinates
	Origin r3.Vec `json:"origin"`
	Corner r3.Vec `json:"corner"`

	// Normal is the unit normal of the slice plane
	Normal r3.Vec `json:"normal"`

	// Width and Height are the slice extents in voxels
	Width  int `json:"width"`
	Height int `json:"height"`

	// Revision is the scene revision that last changed this placement
	Revision int `json:"revision"`
}

// VolumeInfo summarizes a loaded volume
type VolumeInfo struct {
	// Path is the file the volume was loaded from
	Path string `json:"path"`

	// Lower and Upper are the inclusive domain bounds
	Lower geometry.Point3 `json:"lower"`
	Upper geometry.Point3 `json:"upper"`

	// Size is the number of voxels along each axis
	Size geometry.Point3 `json:"size"`

	// Stats holds intensity statistics over all voxels
	Stats Stats `json:"stats"`
}

// Stats holds intensity statistics of a volume or a slice
type Stats struct {
	Min     uint8   `json:"min"`
	Max     uint8   `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
	Entropy float64 `json:"entropy"`
	NonZero int     `json:"nonZero"`
	Count   int     `json:"count"`
}
