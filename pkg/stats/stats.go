// Package stats computes intensity statistics of volumes and slices.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"sliceviewer/internal/models"
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/volume"
)

// numBins is the histogram size used for entropy; one bin per grey level.
const numBins = 256

// Histogram counts how many samples fall on each grey level.
func Histogram(data []uint8) []float64 {
	hist := make([]float64, numBins)
	for _, v := range data {
		hist[v]++
	}
	return hist
}

// Entropy computes the Shannon entropy, in bits, of the grey level
// distribution of data.
func Entropy(data []uint8) float64 {
	if len(data) == 0 {
		return 0
	}
	hist := Histogram(data)
	n := float64(len(data))
	for i := range hist {
		hist[i] /= n
	}
	// stat.Entropy uses the natural logarithm
	return stat.Entropy(hist) / math.Ln2
}

// Summarize computes the statistics of a raw sample buffer.
func Summarize(data []uint8) models.Stats {
	s := models.Stats{Count: len(data)}
	if len(data) == 0 {
		return s
	}

	values := make([]float64, len(data))
	s.Min, s.Max = data[0], data[0]
	for i, v := range data {
		values[i] = float64(v)
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		if v != 0 {
			s.NonZero++
		}
	}

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if math.IsNaN(s.StdDev) {
		// a single sample has no spread
		s.StdDev = 0
	}
	s.Entropy = Entropy(data)
	return s
}

// Volume summarizes every voxel of img.
func Volume(img *volume.Image3D) models.Stats {
	return Summarize(img.Data())
}

// Image summarizes a 2D image such as a slice view.
func Image(img volume.Image2D) models.Stats {
	d := img.Domain()
	data := make([]uint8, 0, d.Width()*d.Height())
	for y := d.Lower[1]; y <= d.Upper[1]; y++ {
		for x := d.Lower[0]; x <= d.Upper[0]; x++ {
			data = append(data, img.Get(geometry.Pt2(x, y)))
		}
	}
	return Summarize(data)
}

// Info builds the summary reported for a loaded volume.
func Info(path string, img *volume.Image3D) models.VolumeInfo {
	d := img.Domain()
	return models.VolumeInfo{
		Path:  path,
		Lower: d.Lower,
		Upper: d.Upper,
		Size:  d.Size(),
		Stats: Volume(img),
	}
}
