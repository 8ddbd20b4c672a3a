package importer

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/volume"
)

func testVolume() *volume.Image3D {
	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(3, 2, 1)})
	for i := range img.Data() {
		img.Data()[i] = uint8(i * 10)
	}
	return img
}

func TestForPath(t *testing.T) {
	opts := DefaultOptions()

	for _, name := range []string{"a.vol", "b.p3d", "c.pgm3d", "d.pgm3D", "e.pgm", "f.sdp"} {
		imp, err := ForPath(name, opts)
		require.NoError(t, err, name)
		assert.IsType(t, &Standard{}, imp, name)
	}

	imp, err := ForPath("series.dcm", opts)
	require.NoError(t, err)
	require.IsType(t, &Medical{}, imp)
	assert.Equal(t, NewRescaling(-1000, 3000, 0, 255), imp.(*Medical).Window)

	_, err = ForPath("image.png", opts)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "png")
}

func TestVolRoundTrip(t *testing.T) {
	img := testVolume()

	var buf bytes.Buffer
	require.NoError(t, WriteVol(&buf, img))

	got, err := ReadVol(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, img.Domain(), got.Domain())
	assert.Equal(t, img.Data(), got.Data())
}

func TestReadVolErrors(t *testing.T) {
	_, err := ReadVol(bufio.NewReader(strings.NewReader("X: 2\nY: 2\n.\n")))
	assert.ErrorContains(t, err, "missing Z")

	_, err = ReadVol(bufio.NewReader(strings.NewReader("X: 2\nY: 2\nZ: 2\n.\nabc")))
	assert.ErrorContains(t, err, "vol data")

	_, err = ReadVol(bufio.NewReader(strings.NewReader("garbage\n")))
	assert.ErrorContains(t, err, "malformed")
}

func TestReadPGM3DASCII(t *testing.T) {
	src := "P2-3D\n# made by hand\n2 2 2\n# comment between header fields\n300\n" +
		"0 1 2 3\n4 5 6 400\n"

	img, err := ReadPGM3D(bufio.NewReader(strings.NewReader(src)))
	require.NoError(t, err)

	assert.Equal(t, geometry.Pt3(1, 1, 1), img.Domain().Upper)
	assert.Equal(t, uint8(2), img.Get(geometry.Pt3(0, 1, 0)))
	assert.Equal(t, uint8(255), img.Get(geometry.Pt3(1, 1, 1)))
}

func TestPGM3DBinaryRoundTrip(t *testing.T) {
	img := testVolume()

	var buf bytes.Buffer
	require.NoError(t, WritePGM3D(&buf, img))

	got, err := ReadPGM3D(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, img.Data(), got.Data())
}

func TestReadPGM3DBadMagic(t *testing.T) {
	_, err := ReadPGM3D(bufio.NewReader(strings.NewReader("P5\n2 2\n255\n")))
	assert.ErrorContains(t, err, "unsupported magic")
}

func TestReadersRejectOversizedVolumes(t *testing.T) {
	_, err := ReadVol(bufio.NewReader(strings.NewReader("X: 3000000000\nY: 3000000000\nZ: 3000000000\n.\n")))
	assert.ErrorContains(t, err, "too large")

	_, err = ReadVol(bufio.NewReader(strings.NewReader("X: 2048\nY: 2048\nZ: 2048\n.\n")))
	assert.ErrorContains(t, err, "too large")

	_, err = ReadPGM3D(bufio.NewReader(strings.NewReader("P3D\n4000000000 4000000000 4000000000\n255\n")))
	assert.ErrorContains(t, err, "too large")

	_, err = ReadPGM3D(bufio.NewReader(strings.NewReader("P2-3D\n4611686018427387904 4 4\n255\n")))
	assert.ErrorContains(t, err, "too large")

	_, err = ReadSDP(strings.NewReader("0 0 0\n2000000000 2000000000 2000000000\n"))
	assert.ErrorContains(t, err, "too large")
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, checkSize(geometry.Pt3(1024, 1024, 1024)))
	assert.Error(t, checkSize(geometry.Pt3(1024, 1024, 1025)))
	assert.Error(t, checkSize(geometry.Pt3(0, 1, 1)))
	assert.Error(t, checkSize(geometry.Pt3(-4, -4, 1)))
}

func TestReadSDP(t *testing.T) {
	src := "# points\n1 2 3\n\n4 0 3 extra\n2 2 5\n"

	img, err := ReadSDP(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, geometry.Domain3{Lower: geometry.Pt3(1, 0, 3), Upper: geometry.Pt3(4, 2, 5)}, img.Domain())
	assert.Equal(t, uint8(255), img.Get(geometry.Pt3(4, 0, 3)))
	assert.Equal(t, uint8(0), img.Get(geometry.Pt3(1, 0, 3)))

	_, err = ReadSDP(strings.NewReader("1 2\n"))
	assert.Error(t, err)
	_, err = ReadSDP(strings.NewReader("# nothing\n"))
	assert.Error(t, err)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.vol")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteVol(f, testVolume()))
	require.NoError(t, f.Close())

	img, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, testVolume().Data(), img.Data())

	_, err = Load(filepath.Join(dir, "missing.vol"), DefaultOptions())
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "cube.raw"), DefaultOptions())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRescaling(t *testing.T) {
	r := NewRescaling(-1000, 3000, 0, 255)

	assert.Equal(t, uint8(0), r.Apply(-2000))
	assert.Equal(t, uint8(0), r.Apply(-1000))
	assert.Equal(t, uint8(255), r.Apply(3000))
	assert.Equal(t, uint8(255), r.Apply(5000))
	// (1000 - -1000) * 255 / 4000 = 127.5
	assert.Equal(t, uint8(127), r.Apply(1000))
}

func TestDicomFilesListsDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.dcm", "a.dcm", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	files, err := dicomFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.dcm"), filepath.Join(dir, "b.dcm")}, files)

	_, err = dicomFiles(t.TempDir())
	assert.Error(t, err)
}
