package stats

import (
	"math"
	"testing"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/slice"
	"sliceviewer/pkg/volume"
)

// TestEntropy verifies entropy values for simple distributions
func TestEntropy(t *testing.T) {
	tests := []struct {
		name string
		data []uint8
		want float64
	}{
		{"empty", nil, 0},
		{"constant", []uint8{7, 7, 7, 7}, 0},
		{"two levels", []uint8{0, 255, 0, 255}, 1},
		{"four levels", []uint8{0, 1, 2, 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entropy(tt.data)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected entropy %f, got %f", tt.want, got)
			}
		})
	}
}

// TestSummarize verifies min, max, mean and spread
func TestSummarize(t *testing.T) {
	s := Summarize([]uint8{0, 2, 4, 6})

	if s.Min != 0 || s.Max != 6 {
		t.Errorf("Expected range [0, 6], got [%d, %d]", s.Min, s.Max)
	}
	if math.Abs(s.Mean-3) > 1e-9 {
		t.Errorf("Expected mean 3, got %f", s.Mean)
	}
	// sample standard deviation of 0, 2, 4, 6
	if want := math.Sqrt(20.0 / 3); math.Abs(s.StdDev-want) > 1e-9 {
		t.Errorf("Expected std dev %f, got %f", want, s.StdDev)
	}
	if s.NonZero != 3 || s.Count != 4 {
		t.Errorf("Expected 3 of 4 non-zero, got %d of %d", s.NonZero, s.Count)
	}

	single := Summarize([]uint8{9})
	if single.StdDev != 0 {
		t.Errorf("Expected zero spread for one sample, got %f", single.StdDev)
	}
}

// TestSliceStatistics verifies statistics computed through a slice view
func TestSliceStatistics(t *testing.T) {
	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(3, 3, 3)})
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(geometry.Pt3(x, y, 2), 100)
		}
	}

	s := Image(slice.New(img, geometry.Z, 2))
	if s.Count != 16 || s.NonZero != 16 || s.Mean != 100 {
		t.Errorf("Unexpected slice stats: %+v", s)
	}

	info := Info("cube.vol", img)
	if info.Size != geometry.Pt3(4, 4, 4) {
		t.Errorf("Expected size 4x4x4, got %v", info.Size)
	}
	if info.Stats.NonZero != 16 {
		t.Errorf("Expected 16 non-zero voxels, got %d", info.Stats.NonZero)
	}
}
