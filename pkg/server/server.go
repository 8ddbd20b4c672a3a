// Package server exposes the slice views of a volume over HTTP. Stateless
// endpoints render any slice on demand; the slider endpoints drive a
// shared controller the way the desktop sliders did.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"

	"sliceviewer/internal/models"
	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/resample"
	"sliceviewer/pkg/shell"
	"sliceviewer/pkg/slice"
	"sliceviewer/pkg/stats"
	"sliceviewer/pkg/visualization"
	"sliceviewer/pkg/volume"
)

// maxScale bounds the nearest-neighbour upscaling of the scale parameter.
const maxScale = 8

// Server serves one volume.
type Server struct {
	mu     sync.Mutex
	ctrl   *shell.Controller
	scene  *visualization.Scene
	frames [3]*resample.Frame
	titles [3]string

	img    *volume.Image3D
	info   models.VolumeInfo
	logger *log.Logger
}

// AxisView is the JSON form of one slice view's sliders.
type AxisView struct {
	Axis     geometry.Axis `json:"axis"`
	Offset   shell.Slider  `json:"offset"`
	Zoom     shell.Slider  `json:"zoom"`
	GridSize float64       `json:"gridSize"`
	Title    string        `json:"title"`
}

// New creates a server for img and draws the initial slices.
func New(path string, img *volume.Image3D, zoom shell.ZoomSettings, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		scene:  visualization.NewScene(r3.Vec{X: 1, Y: 1, Z: 1}),
		img:    img,
		info:   stats.Info(path, img),
		logger: logger,
	}
	ctrl, err := shell.NewController(img, zoom, s, s.scene)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	if err := ctrl.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Show implements shell.Display. It runs with s.mu held by the caller.
func (s *Server) Show(axis geometry.Axis, frame *resample.Frame, title string) {
	s.frames[axis] = frame
	s.titles[axis] = title
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/volume", s.handleVolume)
	r.Get("/scene", s.handleScene)
	r.Get("/state", s.handleState)

	r.Route("/slices/{axis}", func(r chi.Router) {
		r.Get("/current.png", s.handleCurrent)
		r.Get("/{offset}.png", s.handleRender)
		r.Post("/offset/{value}", s.handleSetOffset)
		r.Post("/zoom/{value}", s.handleSetZoom)
		r.Post("/reset", s.handleReset)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"revision":   s.scene.Revision(),
		"center":     s.scene.Center(s.img.Domain()),
		"placements": s.scene.Placements(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]AxisView, 0, 3)
	for _, a := range geometry.Axes {
		views = append(views, s.axisView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) axisView(a geometry.Axis) AxisView {
	st := s.ctrl.States()[a]
	return AxisView{
		Axis:     a,
		Offset:   st.Offset,
		Zoom:     st.Zoom,
		GridSize: s.ctrl.GridSize(a),
		Title:    s.titles[a],
	}
}

// handleRender renders any slice without touching the shared sliders.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	axis, ok := s.axisParam(w, r)
	if !ok {
		return
	}
	offset, err := strconv.Atoi(chi.URLParam(r, "offset"))
	if err != nil || !s.img.Domain().HasOffset(axis, offset) {
		httpError(w, http.StatusBadRequest, fmt.Errorf("offset %q outside the volume along %v", chi.URLParam(r, "offset"), axis))
		return
	}

	zoom := s.ctrl.Zoom()
	value := zoom.Scale1
	if q := r.URL.Query().Get("zoom"); q != "" {
		value, err = strconv.Atoi(q)
		if err != nil || value < zoom.Min || value > zoom.Max {
			httpError(w, http.StatusBadRequest, fmt.Errorf("zoom must be an integer in [%d, %d]", zoom.Min, zoom.Max))
			return
		}
	}

	frame, err := slice.Render(s.img, axis, offset, zoom.GridSize(value))
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeFrame(w, r, frame)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	axis, ok := s.axisParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	frame := s.frames[axis]
	s.mu.Unlock()
	s.writeFrame(w, r, frame)
}

func (s *Server) handleSetOffset(w http.ResponseWriter, r *http.Request) {
	s.applySlider(w, r, s.ctrl.SetOffset)
}

func (s *Server) handleSetZoom(w http.ResponseWriter, r *http.Request) {
	s.applySlider(w, r, s.ctrl.SetZoom)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	axis, ok := s.axisParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctrl.ResetScale(axis); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.axisView(axis))
}

// applySlider moves a slider of the shared controller. Out of range values
// are clamped, as a slider widget would.
func (s *Server) applySlider(w http.ResponseWriter, r *http.Request, set func(geometry.Axis, int) error) {
	axis, ok := s.axisParam(w, r)
	if !ok {
		return
	}
	value, err := strconv.Atoi(chi.URLParam(r, "value"))
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("slider value must be an integer: %w", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := set(axis, value); err != nil {
		if errors.Is(err, shell.ErrUnknownAxis) {
			httpError(w, http.StatusBadRequest, err)
			return
		}
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Debug("slider moved", "axis", axis, "value", value, "title", s.titles[axis])
	writeJSON(w, http.StatusOK, s.axisView(axis))
}

func (s *Server) axisParam(w http.ResponseWriter, r *http.Request) (geometry.Axis, bool) {
	axis, err := geometry.ParseAxis(chi.URLParam(r, "axis"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return axis, true
}

// writeFrame encodes frame as PNG, upscaled by the optional integer scale
// query parameter.
func (s *Server) writeFrame(w http.ResponseWriter, r *http.Request, frame *resample.Frame) {
	var img image.Image = frame.Opaque()
	if q := r.URL.Query().Get("scale"); q != "" {
		k, err := strconv.Atoi(q)
		if err != nil || k < 1 || k > maxScale {
			httpError(w, http.StatusBadRequest, fmt.Errorf("scale must be an integer in [1, %d]", maxScale))
			return
		}
		img = upscale(img, k)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Grid-Size", strconv.FormatFloat(frame.GridSize, 'f', 3, 64))
	if err := visualization.Encode(w, img, "png"); err != nil {
		s.logger.Error("encode slice", "err", err)
	}
}

// upscale enlarges img k times with nearest-neighbour sampling so voxel
// edges stay sharp.
func upscale(img image.Image, k int) image.Image {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*k, b.Dy()*k))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
