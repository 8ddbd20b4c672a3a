// Package tui is a terminal front end for the slice controller: one slice
// view at a time, drawn with a grey level character ramp.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sliceviewer/pkg/geometry"
	"sliceviewer/pkg/resample"
	"sliceviewer/pkg/shell"
	"sliceviewer/pkg/volume"
)

// ramp maps intensities to characters, darkest first.
const ramp = " .:-=+*#%@"

var (
	colorCyan  = lipgloss.Color("#00D7D7")
	colorDim   = lipgloss.Color("#626262")
	colorWhite = lipgloss.Color("#FFFFFF")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Underline(true)
	tabStyle    = lipgloss.NewStyle().Foreground(colorDim)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// frames collects what the controller shows. It implements shell.Display.
type frames struct {
	frame [3]*resample.Frame
	title [3]string
}

func (f *frames) Show(axis geometry.Axis, frame *resample.Frame, title string) {
	f.frame[axis] = frame
	f.title[axis] = title
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctrl   *shell.Controller
	shown  *frames
	focus  geometry.Axis
	width  int
	height int
	err    error
}

// New builds a model around a fresh controller for img. scene may be nil.
func New(img *volume.Image3D, zoom shell.ZoomSettings, scene shell.Scene) (*Model, error) {
	shown := &frames{}
	ctrl, err := shell.NewController(img, zoom, shown, scene)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Init(); err != nil {
		return nil, err
	}
	return &Model{ctrl: ctrl, shown: shown, focus: geometry.Z, width: 80, height: 24}, nil
}

// Focus returns the axis whose view is displayed.
func (m *Model) Focus() geometry.Axis { return m.focus }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		st := m.ctrl.States()[m.focus]
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % 3
		case "shift+tab":
			m.focus = (m.focus + 2) % 3
		case "right", "l":
			m.err = m.ctrl.SetOffset(m.focus, st.Offset.Value+1)
		case "left", "h":
			m.err = m.ctrl.SetOffset(m.focus, st.Offset.Value-1)
		case "pgup":
			m.err = m.ctrl.SetOffset(m.focus, st.Offset.Value+10)
		case "pgdown":
			m.err = m.ctrl.SetOffset(m.focus, st.Offset.Value-10)
		case "+", "=", "up", "k":
			m.err = m.ctrl.SetZoom(m.focus, st.Zoom.Value+1)
		case "-", "down", "j":
			m.err = m.ctrl.SetZoom(m.focus, st.Zoom.Value-1)
		case "r":
			m.err = m.ctrl.ResetScale(m.focus)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	for _, a := range geometry.Axes {
		label := fmt.Sprintf(" %v ", a)
		if a == m.focus {
			b.WriteString(activeStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	b.WriteString("\n")

	st := m.ctrl.States()[m.focus]
	b.WriteString(titleStyle.Render(m.shown.title[m.focus]))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("slice %d/%d  zoom %d [%d-%d]",
		st.Offset.Value, st.Offset.Max, st.Zoom.Value, st.Zoom.Min, st.Zoom.Max)))
	b.WriteString("\n\n")

	b.WriteString(Draw(m.shown.frame[m.focus], m.width, m.height-7))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab axis  ←/→ slice  +/- zoom  r 1:1  q quit"))
	return b.String()
}

// Draw renders frame as text, cropped to maxWidth columns and maxHeight
// rows.
func Draw(frame *resample.Frame, maxWidth, maxHeight int) string {
	if frame == nil {
		return ""
	}
	w := min(frame.Width(), max(maxWidth, 1))
	h := min(frame.Height(), max(maxHeight, 1))

	var b strings.Builder
	b.Grow((w + 1) * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(frame.Intensity(x, y))
			b.WriteByte(ramp[v*(len(ramp)-1)/255])
		}
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
