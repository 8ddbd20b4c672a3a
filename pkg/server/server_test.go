package server

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sliceviewer/internal/models"
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/shell"
	"sliceviewer/pkg/volume"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := volume.NewImage3D(geometry.Domain3{Upper: geometry.Pt3(9, 7, 5)})
	for z := 0; z <= 5; z++ {
		for y := 0; y <= 7; y++ {
			for x := 0; x <= 9; x++ {
				img.Set(geometry.Pt3(x, y, z), uint8(10*z))
			}
		}
	}
	s, err := New("test.vol", img, shell.DefaultZoom(), log.New(io.Discard))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestVolumeInfo(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/volume")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info models.VolumeInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, geometry.Pt3(10, 8, 6), info.Size)
	assert.Equal(t, uint8(50), info.Stats.Max)
}

func TestRenderSlice(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/slices/z/3.png?zoom=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "2.000", resp.Header.Get("X-Grid-Size"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	// floor(9/2)+1 by floor(7/2)+1
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(30), r>>8)
}

func TestRenderScaled(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/slices/x/0.png?scale=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	// X slices span (y, z): 8 x 6
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 18, img.Bounds().Dy())
}

func TestRenderRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/slices/w/0.png",
		"/slices/z/6.png",
		"/slices/z/-1.png",
		"/slices/z/abc.png",
		"/slices/z/0.png?zoom=5",
		"/slices/z/0.png?zoom=x",
		"/slices/z/0.png?scale=9",
	} {
		resp := do(t, http.MethodGet, ts.URL+path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestSliderEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/slices/y/offset/5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view AxisView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, geometry.Y, view.Axis)
	assert.Equal(t, 5, view.Offset.Value)

	resp = do(t, http.MethodPost, ts.URL+"/slices/y/zoom/40")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, 0.5, view.GridSize)
	assert.Equal(t, "Slice View Y: sampling grid size: 0.500 (zoom x 2.000)", view.Title)

	resp = do(t, http.MethodGet, ts.URL+"/slices/y/current.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	// Y slices span (x, z): 10 x 6 at grid 0.5
	assert.Equal(t, 19, img.Bounds().Dx())
	assert.Equal(t, 11, img.Bounds().Dy())

	resp = do(t, http.MethodPost, ts.URL+"/slices/y/reset")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, 1.0, view.GridSize)
	assert.Equal(t, 20, view.Zoom.Value)

	resp = do(t, http.MethodPost, ts.URL+"/slices/y/offset/nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStateAndScene(t *testing.T) {
	ts := newTestServer(t)

	do(t, http.MethodPost, ts.URL+"/slices/x/offset/99")

	resp := do(t, http.MethodGet, ts.URL+"/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var views []AxisView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 3)
	assert.Equal(t, 9, views[0].Offset.Value)
	assert.Equal(t, "Slice View Z: sampling grid size: 1.000 (zoom x 1.000)", views[2].Title)

	resp = do(t, http.MethodGet, ts.URL+"/scene")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var scene struct {
		Revision   int                     `json:"revision"`
		Placements []models.SlicePlacement `json:"placements"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scene))
	assert.Equal(t, 4, scene.Revision)
	require.Len(t, scene.Placements, 3)
	assert.Equal(t, 9, scene.Placements[0].Offset)
	assert.Equal(t, geometry.X, scene.Placements[0].Axis)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
