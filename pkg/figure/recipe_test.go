package figure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecipe = `
schema_version = 2

page {
  sizing         = "axes_first"
  axes_width_in  = 5
  axes_height_in = 3
  margin_in      = 0.25
  dpi            = 600
}

axes {
  x_label = "Time (min)"
  x_range = [0, 30]
  grid    = true
}

trace "inner" {
  color = rgb(31, 119, 180)
  width = 2
}

trace "avg_pressure" {
  visible        = true
  secondary_axis = true
  style          = "dot"
}

event {
  time  = 12.5
  label = "PE 1uM"
}

event {
  time  = 14
  label = "peak"
  below = true
  color = rgba(255, 0, 0, 128)
}

annotation "arrow" {
  space = "axes"
  x     = 0.1
  y     = 0.9
  x2    = 0.3
  y2    = 0.7
}

legend_loc = "top-left"
`

func TestParseRecipe(t *testing.T) {
	s, err := ParseRecipe([]byte(sampleRecipe), "sample.hcl")
	require.NoError(t, err)

	assert.Equal(t, SizingAxesFirst, s.Page.Sizing)
	assert.Equal(t, 5.0, s.Page.AxesWidthIn)
	assert.Equal(t, 600.0, s.Page.DPI)
	assert.Equal(t, DefaultFigureSpec().Page.WidthIn, s.Page.WidthIn, "unset page fields keep defaults")

	assert.Equal(t, "Time (min)", s.Axes.XLabel)
	require.NotNil(t, s.Axes.XRange)
	assert.Equal(t, 30.0, s.Axes.XRange.Max)
	assert.Nil(t, s.Axes.YRange)
	assert.True(t, s.Axes.Grid)

	require.Len(t, s.Traces, 2)
	assert.Equal(t, "#1f77b4", s.Traces[0].Color, "rgb() evaluates to hex")
	assert.Equal(t, 2.0, s.Traces[0].Width)
	assert.True(t, s.Traces[0].Visible, "inner inherits its default visibility")
	assert.True(t, s.Traces[1].SecondaryAxis)
	assert.Equal(t, "dot", s.Traces[1].Style)

	require.Len(t, s.Events, 2)
	assert.Equal(t, "PE 1uM", s.Events[0].Label)
	assert.True(t, s.Events[0].Visible)
	assert.True(t, s.Events[1].Below)
	assert.Equal(t, "#ff000080", s.Events[1].Color)

	require.Len(t, s.Annotations, 1)
	assert.Equal(t, KindArrow, s.Annotations[0].Kind)
	assert.Equal(t, SpaceAxes, s.Annotations[0].Space)

	assert.Equal(t, "top-left", s.LegendLoc)
}

func TestParseRecipeInvalid(t *testing.T) {
	_, err := ParseRecipe([]byte("page {\n  width_in = \n}"), "broken.hcl")
	assert.Error(t, err)
}

func TestLoadRecipeDispatch(t *testing.T) {
	dir := t.TempDir()

	hclPath := filepath.Join(dir, "fig.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`legend_visible = false`), 0o644))
	s, err := LoadRecipe(hclPath)
	require.NoError(t, err)
	assert.False(t, s.LegendVisible)

	jsonPath := filepath.Join(dir, "fig.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"legend_visible": false}`), 0o644))
	s, err = LoadRecipe(jsonPath)
	require.NoError(t, err)
	assert.False(t, s.LegendVisible)

	_, err = LoadRecipe(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}
