// Package shell holds the slider state behind the three slice views and
// turns slider changes into rendered frames and scene updates. It has no
// widgets of its own: front ends drive a Controller and receive frames
// through the Display and Scene collaborators.
package shell

import (
	"errors"
	"fmt"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/resample"
	"sliceviewer/pkg/slice"
	"sliceviewer/pkg/volume"
)

// ErrUnknownAxis is returned for axes other than X, Y and Z.
var ErrUnknownAxis = errors.New("unknown axis")

// ZoomSettings bounds the zoom sliders. The grid size shown for a zoom
// value v is Scale1/v, so v == Scale1 displays the slice at 1:1.
type ZoomSettings struct {
	Min, Max, Scale1 int
}

// DefaultZoom returns the 10..40 range with 1:1 at 20.
func DefaultZoom() ZoomSettings {
	return ZoomSettings{Min: 10, Max: 40, Scale1: 20}
}

// Validate checks that the range is positive and contains Scale1.
func (z ZoomSettings) Validate() error {
	if z.Min <= 0 || z.Min > z.Max {
		return fmt.Errorf("invalid zoom range [%d, %d]", z.Min, z.Max)
	}
	if z.Scale1 < z.Min || z.Scale1 > z.Max {
		return fmt.Errorf("zoom scale1 %d outside [%d, %d]", z.Scale1, z.Min, z.Max)
	}
	return nil
}

// GridSize converts a zoom slider value into a sampling grid size.
func (z ZoomSettings) GridSize(value int) float64 {
	return float64(z.Scale1) / float64(value)
}

// Slider is an integer value constrained to [Min, Max].
type Slider struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Value int `json:"value"`
}

// Set clamps v into range, stores it and returns the stored value.
func (s *Slider) Set(v int) int {
	s.Value = min(max(v, s.Min), s.Max)
	return s.Value
}

// AxisState is the pair of sliders controlling one slice view.
type AxisState struct {
	Axis   geometry.Axis `json:"-"`
	Offset Slider        `json:"offset"`
	Zoom   Slider        `json:"zoom"`
}

// Display shows rendered slices.
type Display interface {
	Show(axis geometry.Axis, frame *resample.Frame, title string)
}

// Scene positions slices in a 3D view. Place is called once per axis,
// Update for every later change of that slice.
type Scene interface {
	Place(axis geometry.Axis, offset int, view *slice.View)
	Update(axis geometry.Axis, offset int, view *slice.View)
}

// Controller owns the sliders of the three slice views. It is not safe
// for concurrent use.
type Controller struct {
	img     *volume.Image3D
	zoom    ZoomSettings
	axes    [3]AxisState
	display Display
	scene   Scene
}

// NewController creates the sliders for img: offsets span the volume
// bounds and zooms start at zoom.Scale1. display and scene may be nil.
func NewController(img *volume.Image3D, zoom ZoomSettings, display Display, scene Scene) (*Controller, error) {
	if err := zoom.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{img: img, zoom: zoom, display: display, scene: scene}
	d := img.Domain()
	for _, a := range geometry.Axes {
		c.axes[a] = AxisState{
			Axis:   a,
			Offset: Slider{Min: d.Lower[a], Max: d.Upper[a], Value: d.Lower[a]},
			Zoom:   Slider{Min: zoom.Min, Max: zoom.Max, Value: zoom.Scale1},
		}
	}
	return c, nil
}

// Volume returns the image being viewed.
func (c *Controller) Volume() *volume.Image3D { return c.img }

// Zoom returns the zoom slider settings.
func (c *Controller) Zoom() ZoomSettings { return c.zoom }

// Init draws the three slices at their first offset and places them in
// the scene.
func (c *Controller) Init() error {
	for _, a := range geometry.Axes {
		if err := c.updateSlice(a, true); err != nil {
			return err
		}
	}
	return nil
}

// State returns a copy of the slider state of axis.
func (c *Controller) State(axis geometry.Axis) (AxisState, error) {
	if !axis.Valid() {
		return AxisState{}, fmt.Errorf("%w: %d", ErrUnknownAxis, axis)
	}
	return c.axes[axis], nil
}

// States returns a copy of all three slider states.
func (c *Controller) States() [3]AxisState { return c.axes }

// GridSize returns the sampling grid size currently selected for axis.
// It panics if axis is not X, Y or Z.
func (c *Controller) GridSize(axis geometry.Axis) float64 {
	return c.zoom.GridSize(c.axes[axis].Zoom.Value)
}

// Title describes the sampling of axis, e.g.
// "Slice View X: sampling grid size: 1.000 (zoom x 1.000)". Like GridSize
// it panics on an invalid axis.
func (c *Controller) Title(axis geometry.Axis) string {
	g := c.GridSize(axis)
	return fmt.Sprintf("Slice View %v: sampling grid size: %.3f (zoom x %.3f)", axis, g, 1/g)
}

// SetOffset moves the slice of axis and refreshes both its view and its
// placement in the scene.
func (c *Controller) SetOffset(axis geometry.Axis, value int) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAxis, axis)
	}
	c.axes[axis].Offset.Set(value)
	return c.updateSlice(axis, false)
}

// SetZoom changes the zoom slider of axis and redraws its view.
func (c *Controller) SetZoom(axis geometry.Axis, value int) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAxis, axis)
	}
	c.axes[axis].Zoom.Set(value)
	return c.updateZoom(axis)
}

// ResetScale puts the zoom slider of axis back to 1:1.
func (c *Controller) ResetScale(axis geometry.Axis) error {
	return c.SetZoom(axis, c.zoom.Scale1)
}

// Render draws the current slice of axis without notifying anyone.
func (c *Controller) Render(axis geometry.Axis) (*resample.Frame, error) {
	if !axis.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAxis, axis)
	}
	return slice.Render(c.img, axis, c.axes[axis].Offset.Value, c.GridSize(axis))
}

func (c *Controller) updateZoom(axis geometry.Axis) error {
	frame, err := c.Render(axis)
	if err != nil {
		return err
	}
	if c.display != nil {
		c.display.Show(axis, frame, c.Title(axis))
	}
	return nil
}

func (c *Controller) updateSlice(axis geometry.Axis, init bool) error {
	if err := c.updateZoom(axis); err != nil {
		return err
	}
	if c.scene == nil {
		return nil
	}
	offset := c.axes[axis].Offset.Value
	view := slice.New(c.img, axis, offset)
	if init {
		c.scene.Place(axis, offset, view)
	} else {
		c.scene.Update(axis, offset, view)
	}
	return nil
}
