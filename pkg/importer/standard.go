package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/volume"
)

// maxVoxels bounds the size of the volumes the readers allocate.
const maxVoxels = 1 << 30

// checkSize rejects dimensions whose voxel count is not positive or
// exceeds maxVoxels, including products that would overflow int.
func checkSize(size geometry.Point3) error {
	n := 1
	for _, s := range size {
		if s <= 0 || s > maxVoxels/n {
			return fmt.Errorf("volume %v too large", size)
		}
		n *= s
	}
	return nil
}

// Standard imports the plain voxel formats: vol, pgm3d/p3d/pgm and sdp.
type Standard struct {
	logger *log.Logger
}

// Import reads path according to its extension.
func (s *Standard) Import(path string) (*volume.Image3D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := Extension(path)
	if s.logger != nil {
		s.logger.Debug("Reading volume", "path", path, "format", ext)
	}

	r := bufio.NewReader(f)
	switch ext {
	case "vol":
		return ReadVol(r)
	case "p3d", "pgm3d", "pgm3D", "pgm":
		return ReadPGM3D(r)
	case "sdp":
		return ReadSDP(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadVol decodes a vol file: "Key: value" header lines closed by a line
// holding a single ".", followed by X*Y*Z raw voxels.
func ReadVol(r *bufio.Reader) (*volume.Image3D, error) {
	header := make(map[string]string)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("vol header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "." {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("vol header: malformed line %q", line)
		}
		header[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	var size geometry.Point3
	for i, key := range []string{"X", "Y", "Z"} {
		v, ok := header[key]
		if !ok {
			return nil, fmt.Errorf("vol header: missing %s", key)
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("vol header: invalid %s %q", key, v)
		}
		size[i] = n
	}
	if err := checkSize(size); err != nil {
		return nil, fmt.Errorf("vol header: %w", err)
	}

	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(size[0]-1, size[1]-1, size[2]-1)})
	if _, err := io.ReadFull(r, img.Data()); err != nil {
		return nil, fmt.Errorf("vol data: %w", err)
	}
	return img, nil
}

// WriteVol encodes img in the vol format.
func WriteVol(w io.Writer, img *volume.Image3D) error {
	size := img.Domain().Size()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Center-X: 0\nCenter-Y: 0\nCenter-Z: 0\n")
	fmt.Fprintf(bw, "X: %d\nY: %d\nZ: %d\n", size[0], size[1], size[2])
	fmt.Fprintf(bw, "Voxel-Size: 1\nAlpha-Color: 0\nVoxel-Endian: 0\nInt-Endian: 0123\nVersion: 2\n.\n")
	if _, err := bw.Write(img.Data()); err != nil {
		return err
	}
	return bw.Flush()
}

// tokenizer splits a netpbm-style header into whitespace separated words,
// skipping "#" comments.
type tokenizer struct {
	r *bufio.Reader
}

func (t *tokenizer) next() (string, error) {
	var sb strings.Builder
	for {
		c, err := t.r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		switch {
		case c == '#' && sb.Len() == 0:
			if _, err := t.r.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (t *tokenizer) int() (int, error) {
	s, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// ReadPGM3D decodes the 3D netpbm variants: "P2-3D" (ASCII) and "P3D"
// (binary). Values above 255 are clamped.
func ReadPGM3D(r *bufio.Reader) (*volume.Image3D, error) {
	t := &tokenizer{r: r}
	magic, err := t.next()
	if err != nil {
		return nil, fmt.Errorf("pgm3d magic: %w", err)
	}
	if magic != "P2-3D" && magic != "P3D" {
		return nil, fmt.Errorf("pgm3d: unsupported magic %q", magic)
	}

	var size geometry.Point3
	for i := range size {
		if size[i], err = t.int(); err != nil || size[i] <= 0 {
			return nil, fmt.Errorf("pgm3d: invalid dimensions: %v", err)
		}
	}
	maxVal, err := t.int()
	if err != nil || maxVal <= 0 {
		return nil, fmt.Errorf("pgm3d: invalid max value: %v", err)
	}
	if err := checkSize(size); err != nil {
		return nil, fmt.Errorf("pgm3d header: %w", err)
	}

	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(size[0]-1, size[1]-1, size[2]-1)})
	data := img.Data()

	if magic == "P3D" {
		if maxVal > 255 {
			return nil, fmt.Errorf("pgm3d: binary max value %d above 255", maxVal)
		}
		// the single whitespace after the max value was consumed by the tokenizer
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("pgm3d data: %w", err)
		}
		return img, nil
	}

	for i := range data {
		v, err := t.int()
		if err != nil {
			return nil, fmt.Errorf("pgm3d data at voxel %d: %w", i, err)
		}
		data[i] = uint8(min(max(v, 0), 255))
	}
	return img, nil
}

// WritePGM3D encodes img as a binary P3D file.
func WritePGM3D(w io.Writer, img *volume.Image3D) error {
	size := img.Domain().Size()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3D\n%d %d %d\n255\n", size[0], size[1], size[2])
	if _, err := bw.Write(img.Data()); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadSDP decodes a sequence of discrete points, one "x y z" per line. The
// volume spans the bounding box of the points; each point is set to 255.
func ReadSDP(r io.Reader) (*volume.Image3D, error) {
	var points []geometry.Point3
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("sdp line %d: expected 3 coordinates, got %d", line, len(fields))
		}
		var p geometry.Point3
		for i := range p {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("sdp line %d: %w", line, err)
			}
			p[i] = v
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("sdp: no points")
	}

	d := geometry.Domain3{Lower: points[0], Upper: points[0]}
	for _, p := range points[1:] {
		for i := range p {
			d.Lower[i] = min(d.Lower[i], p[i])
			d.Upper[i] = max(d.Upper[i], p[i])
		}
	}
	if err := checkSize(d.Size()); err != nil {
		return nil, fmt.Errorf("sdp: %w", err)
	}

	img := volume.NewImage3D(d)
	for _, p := range points {
		img.Set(p, 255)
	}
	return img, nil
}
