package figure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestFigure(t *testing.T, r *Renderer) *Figure {
	t.Helper()
	spec := testSpec()
	spec.Page.WidthIn = 4
	spec.Page.HeightIn = 3
	spec.Annotations = []AnnotationSpec{
		{Kind: KindText, Space: SpaceFigure, X: 0.02, Y: 0.95, Text: "A", FontSize: 14},
		{Kind: KindBox, Space: SpaceData, X: 5, Y: 90, X2: 15, Y2: 120, LineWidth: 1},
		{Kind: KindLine, Space: SpaceData, X: 5, Y: 90, X2: 5, Y2: 90}, // degenerate, skipped
	}
	fig, err := r.Build(&spec)
	require.NoError(t, err)
	return fig
}

func TestExportFormats(t *testing.T) {
	r := NewRenderer(testSource(), DefaultStyle(), nil)
	fig := buildTestFigure(t, r)
	dir := t.TempDir()

	for _, name := range []string{"fig.png", "fig.svg", "fig.pdf", "fig.jpg", "fig.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, r.Export(fig, path, "", 150), name)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	r := NewRenderer(testSource(), DefaultStyle(), nil)
	fig := buildTestFigure(t, r)
	err := r.Export(fig, filepath.Join(t.TempDir(), "fig.bmp"), "", 96)
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestClampExportDPI(t *testing.T) {
	r := NewRenderer(testSource(), DefaultStyle(), nil)
	fig := &Figure{WidthIn: 20, HeightIn: 5, DPI: 300}

	assert.Equal(t, 300.0, r.clampExportDPI(fig, 300), "within ceiling, untouched")
	assert.Equal(t, 400.0, r.clampExportDPI(fig, 1200), "20in at 1200dpi clamps to 8000px edge")
	assert.Equal(t, 300.0, r.clampExportDPI(fig, 0), "zero dpi falls back to figure dpi")
}
