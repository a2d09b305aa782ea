package figure

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Physical page band. Requested and derived page sizes are clamped into it
// before rendering.
const (
	MinPageIn = 1.0
	MaxPageIn = 40.0
)

// StyleConfig carries the house visual defaults a FigureSpec inherits when
// it leaves a field unset. It is a value type; Merge returns a new config.
type StyleConfig struct {
	FontFamily     string
	AxisFontSize   float64
	TickFontSize   float64
	EventFontSize  float64
	LegendFontSize float64
	GridColor      string
	Background     string
	TraceColors    map[string]string
}

// DefaultStyle returns the built-in house style.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		FontFamily:     "Liberation",
		AxisFontSize:   12,
		TickFontSize:   10,
		EventFontSize:  9,
		LegendFontSize: 9,
		GridColor:      "#e0e0e0",
		Background:     "#ffffff",
		TraceColors: map[string]string{
			"inner":        "#1f77b4",
			"outer":        "#d62728",
			"avg_pressure": "#2ca02c",
			"set_pressure": "#7f7f7f",
		},
	}
}

// StyleOverlay is a partial style document. Nil fields leave the base value
// untouched.
type StyleOverlay struct {
	FontFamily     *string           `yaml:"font_family"`
	AxisFontSize   *float64          `yaml:"axis_fontsize"`
	TickFontSize   *float64          `yaml:"tick_fontsize"`
	EventFontSize  *float64          `yaml:"event_fontsize"`
	LegendFontSize *float64          `yaml:"legend_fontsize"`
	GridColor      *string           `yaml:"grid_color"`
	Background     *string           `yaml:"background"`
	TraceColors    map[string]string `yaml:"trace_colors"`
}

// Merge applies an overlay on top of the receiver and returns the result.
func (s StyleConfig) Merge(o StyleOverlay) StyleConfig {
	out := s
	out.TraceColors = make(map[string]string, len(s.TraceColors))
	for k, v := range s.TraceColors {
		out.TraceColors[k] = v
	}
	if o.FontFamily != nil {
		out.FontFamily = *o.FontFamily
	}
	if o.AxisFontSize != nil && *o.AxisFontSize > 0 {
		out.AxisFontSize = *o.AxisFontSize
	}
	if o.TickFontSize != nil && *o.TickFontSize > 0 {
		out.TickFontSize = *o.TickFontSize
	}
	if o.EventFontSize != nil && *o.EventFontSize > 0 {
		out.EventFontSize = *o.EventFontSize
	}
	if o.LegendFontSize != nil && *o.LegendFontSize > 0 {
		out.LegendFontSize = *o.LegendFontSize
	}
	if o.GridColor != nil {
		out.GridColor = *o.GridColor
	}
	if o.Background != nil {
		out.Background = *o.Background
	}
	for k, v := range o.TraceColors {
		out.TraceColors[k] = v
	}
	return out
}

// LoadStyleOverlay reads a YAML style document from disk.
func LoadStyleOverlay(path string) (StyleOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StyleOverlay{}, fmt.Errorf("read style file: %w", err)
	}
	var o StyleOverlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return StyleOverlay{}, fmt.Errorf("parse style file %s: %w", path, err)
	}
	return o, nil
}

// clampPageIn forces a physical dimension into the supported page band.
func clampPageIn(v float64) float64 {
	if v < MinPageIn {
		return MinPageIn
	}
	if v > MaxPageIn {
		return MaxPageIn
	}
	return v
}
