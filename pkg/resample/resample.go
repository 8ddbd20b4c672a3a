package resample

import (
	"image"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/volume"
)

// Frame is a display-ready RGBA buffer produced from a scalar image. Pixel
// (0, 0) of RGBA corresponds to the lower bound of Domain.
type Frame struct {
	Domain   geometry.Domain2
	GridSize float64
	RGBA     *image.RGBA
}

// Width returns the number of pixel columns.
func (f *Frame) Width() int { return f.Domain.Width() }

// Height returns the number of pixel rows.
func (f *Frame) Height() int { return f.Domain.Height() }

// Intensity returns the grey level of the pixel at column x and row y,
// both counted from the frame origin.
func (f *Frame) Intensity(x, y int) uint8 {
	return f.RGBA.Pix[f.RGBA.PixOffset(x, y)]
}

// Opaque returns a grayscale copy of the frame. The RGBA buffer carries the
// intensity in its alpha channel too, which most encoders would otherwise
// turn into transparency.
func (f *Frame) Opaque() *image.Gray {
	b := f.RGBA.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Pix[g.PixOffset(x, y)] = f.RGBA.Pix[f.RGBA.PixOffset(x, y)]
		}
	}
	return g
}

// Resample samples img on a grid of the given size. A grid size of 1 keeps
// every pixel, larger values skip pixels and smaller values repeat them.
// Each output pixel copies its intensity into all four RGBA channels.
func Resample(img volume.Image2D, gridSize float64) (*Frame, error) {
	s, err := NewSubsampler(img.Domain(), [2]float64{gridSize, gridSize}, geometry.Point2{})
	if err != nil {
		return nil, err
	}
	return Sample(img, s), nil
}

// Sample renders img through an existing sub-sampler. img must be defined
// on s.Source().
func Sample(img volume.Image2D, s *Subsampler) *Frame {
	out := s.Domain()
	width, height := out.Width(), out.Height()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			p := geometry.Pt2(out.Lower[0]+j, out.Lower[1]+i)
			v := img.Get(s.Map(p))
			k := (j + width*i) * 4
			rgba.Pix[k] = v
			rgba.Pix[k+1] = v
			rgba.Pix[k+2] = v
			rgba.Pix[k+3] = v
		}
	}

	return &Frame{Domain: out, GridSize: s.grid[0], RGBA: rgba}
}
