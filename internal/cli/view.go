package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"sliceviewer/internal/tui"
	"sliceviewer/pkg/shell"
	"sliceviewer/pkg/visualization"
	"sliceviewer/pkg/volume"
)

// runViewer opens the terminal viewer on img until the user quits.
func runViewer(ctx context.Context, img *volume.Image3D, zoom shell.ZoomSettings) error {
	logger := loggerFromContext(ctx)
	scene := visualization.NewScene(r3.Vec{X: 1, Y: 1, Z: 1})

	model, err := tui.New(img, zoom, scene)
	if err != nil {
		return err
	}
	logger.Debug("Viewer ready", "center", scene.Center(img.Domain()))

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}
	logger.Debug("Viewer closed", "revisions", scene.Revision())
	return nil
}
