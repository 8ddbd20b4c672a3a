package importer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/volume"
)

// Medical imports DICOM data, either one multi-frame file or a directory
// holding one file per slice. Stored values go through the rescale slope
// and intercept, then through Window into 0..255.
type Medical struct {
	Window Rescaling
	logger *log.Logger
}

// frameData is one decoded DICOM frame in modality units.
type frameData struct {
	rows, cols int
	values     []int
}

// dicomFile is one parsed file of a series.
type dicomFile struct {
	frames   []frameData
	position []float64
	instance []float64
}

// Import reads the file or directory at path.
func (m *Medical) Import(path string) (*volume.Image3D, error) {
	paths, err := dicomFiles(path)
	if err != nil {
		return nil, err
	}

	series := make([]dicomFile, 0, len(paths))
	for _, p := range paths {
		df, err := readDicomFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if m.logger != nil {
			m.logger.Debug("Read DICOM file", "path", p, "frames", len(df.frames))
		}
		series = append(series, df)
	}
	orderSeries(series)

	var frames []frameData
	for _, df := range series {
		frames = append(frames, df.frames...)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no pixel data in %s", path)
	}

	rows, cols := frames[0].rows, frames[0].cols
	for z, fr := range frames {
		if fr.rows != rows || fr.cols != cols {
			return nil, fmt.Errorf("frame %d is %dx%d, expected %dx%d", z, fr.cols, fr.rows, cols, rows)
		}
	}
	size := geometry.Pt3(cols, rows, len(frames))
	if err := checkSize(size); err != nil {
		return nil, err
	}

	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(cols-1, rows-1, len(frames)-1)})
	data := img.Data()
	plane := rows * cols
	for z, fr := range frames {
		for i, v := range fr.values {
			data[z*plane+i] = m.Window.Apply(v)
		}
	}
	return img, nil
}

// orderSeries sorts the files of a series along the slice axis: by the Z
// component of ImagePositionPatient when every file has one, else by
// InstanceNumber when every file has one. Otherwise the name order from
// dicomFiles is kept.
func orderSeries(series []dicomFile) {
	byKey := func(key func(dicomFile) []float64, i int) bool {
		for _, df := range series {
			if len(key(df)) <= i {
				return false
			}
		}
		sort.SliceStable(series, func(a, b int) bool {
			return key(series[a])[i] < key(series[b])[i]
		})
		return true
	}
	if byKey(func(df dicomFile) []float64 { return df.position }, 2) {
		return
	}
	byKey(func(df dicomFile) []float64 { return df.instance }, 0)
}

// dicomFiles lists path itself, or the regular files of the directory at
// path sorted by name.
func dicomFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in %s", path)
	}
	return files, nil
}

func readDicomFile(path string) (dicomFile, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return dicomFile{}, err
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return dicomFile{}, err
	}
	slope := dicomFloat(ds, tag.RescaleSlope, 1)
	intercept := dicomFloat(ds, tag.RescaleIntercept, 0)

	info := dicom.MustGetPixelDataInfo(el.Value)
	df := dicomFile{
		frames:   make([]frameData, 0, len(info.Frames)),
		position: dicomFloats(ds, tag.ImagePositionPatient),
		instance: dicomFloats(ds, tag.InstanceNumber),
	}
	for i := range info.Frames {
		nf, err := info.Frames[i].GetNativeFrame()
		if err != nil {
			return dicomFile{}, fmt.Errorf("frame %d: %w", i, err)
		}
		fd := frameData{rows: nf.Rows, cols: nf.Cols, values: make([]int, len(nf.Data))}
		for j, px := range nf.Data {
			if len(px) == 0 {
				continue
			}
			fd.values[j] = int(math.Round(float64(px[0])*slope + intercept))
		}
		df.frames = append(df.frames, fd)
	}
	return df, nil
}

// dicomFloats reads a decimal or integer string element. It returns nil
// when the element is missing or malformed.
func dicomFloats(ds dicom.Dataset, t tag.Tag) []float64 {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	strs, ok := el.Value.GetValue().([]string)
	if !ok || len(strs) == 0 {
		return nil
	}
	vs := make([]float64, len(strs))
	for i, s := range strs {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		vs[i] = v
	}
	return vs
}

// dicomFloat reads the first value of a decimal string element, falling
// back to def.
func dicomFloat(ds dicom.Dataset, t tag.Tag, def float64) float64 {
	if vs := dicomFloats(ds, t); len(vs) > 0 {
		return vs[0]
	}
	return def
}
