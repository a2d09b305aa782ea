package figure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFigureSpec(t *testing.T) {
	s := DefaultFigureSpec()
	assert.Equal(t, SchemaVersion, s.SchemaVersion)
	assert.Equal(t, SizingFigureFirst, s.Page.Sizing)
	assert.Len(t, s.Traces, 4)
	assert.True(t, s.Traces[0].Visible, "inner trace visible by default")
	assert.False(t, s.Traces[1].Visible)
	assert.Nil(t, s.Axes.XRange, "absent range means autoscale")
	assert.True(t, s.ShowEvents)
	assert.True(t, s.ShowEventLabels)
}

func TestSpecJSONRoundTrip(t *testing.T) {
	s := DefaultFigureSpec()
	s.Page.Sizing = SizingAxesFirst
	s.Page.AxesWidthIn = 4.25
	s.Axes.XRange = &Range{Min: 10, Max: 250}
	s.Axes.Grid = true
	s.Traces[1].Visible = true
	s.Traces[1].Color = "#aa00ff"
	s.Events = append(s.Events, EventSpec{Visible: true, Time: 42, Label: "PE 1uM", Style: "dash", Width: 1})
	s.Annotations = append(s.Annotations, AnnotationSpec{
		Kind: KindArrow, Space: SpaceAxes, X: 0.1, Y: 0.2, X2: 0.4, Y2: 0.5, LineWidth: 2,
	})

	data, err := s.ToJSON()
	require.NoError(t, err)

	got, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, SizingAxesFirst, got.Page.Sizing)
	assert.Equal(t, 4.25, got.Page.AxesWidthIn)
	require.NotNil(t, got.Axes.XRange)
	assert.Equal(t, 10.0, got.Axes.XRange.Min)
	assert.Equal(t, 250.0, got.Axes.XRange.Max)
	assert.Nil(t, got.Axes.YRange)
	assert.True(t, got.Axes.Grid)
	require.Len(t, got.Traces, 4)
	assert.Equal(t, "#aa00ff", got.Traces[1].Color)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "PE 1uM", got.Events[0].Label)
	require.Len(t, got.Annotations, 1)
	assert.Equal(t, KindArrow, got.Annotations[0].Kind)
	assert.Equal(t, SpaceAxes, got.Annotations[0].Space)
}

func TestFromMapToleratesUnknownAndMalformed(t *testing.T) {
	got := FromMap(map[string]any{
		"schema_version": 99,
		"future_section": map[string]any{"x": 1},
		"page": map[string]any{
			"width_in":    "not a number",
			"height_in":   6.0,
			"unknown_key": true,
		},
		"traces": []any{
			"not a map",
			map[string]any{"key": "outer", "color": "#123456"},
		},
	})

	def := DefaultFigureSpec()
	assert.Equal(t, 99, got.SchemaVersion)
	assert.Equal(t, def.Page.WidthIn, got.Page.WidthIn, "malformed value keeps default")
	assert.Equal(t, 6.0, got.Page.HeightIn)
	require.Len(t, got.Traces, 1)
	assert.Equal(t, "#123456", got.Traces[0].Color)
	assert.Equal(t, def.Traces[1].Width, got.Traces[0].Width, "unset trace fields inherit defaults")
}

func TestFromMapNilAndEmpty(t *testing.T) {
	assert.Equal(t, DefaultFigureSpec(), FromMap(nil))
	assert.Equal(t, DefaultFigureSpec(), FromMap(map[string]any{}))
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestRangeSerialization(t *testing.T) {
	s := DefaultFigureSpec()
	m := s.ToMap()
	axes := m["axes"].(map[string]any)
	_, hasX := axes["x_range"]
	assert.False(t, hasX, "nil range must not serialize")

	s.Axes.YRange = &Range{Min: -5, Max: 5}
	axes = s.ToMap()["axes"].(map[string]any)
	assert.Equal(t, []any{-5.0, 5.0}, axes["y_range"])
}
