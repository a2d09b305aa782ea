// Package figure composes publication figures from a declarative FigureSpec:
// a gonum/plot render pipeline, two-pass axes-first physical sizing, and
// raster/vector export with a pixel-size safety clamp.
package figure

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the current persisted recipe version. Loading is tolerant:
// unknown fields are ignored and missing fields fall back to defaults, so
// older and newer documents both load.
const SchemaVersion = 2

// SizingMode selects how the overall figure size is derived.
type SizingMode string

const (
	// SizingFigureFirst uses the requested page size as-is; axes fill
	// whatever room the decorations leave.
	SizingFigureFirst SizingMode = "figure_first"
	// SizingAxesFirst fixes the axes content size and derives the page
	// size by measuring rendered decorations.
	SizingAxesFirst SizingMode = "axes_first"
)

// Range is an explicit axis range. A nil *Range means autoscale to visible
// data, never a default span.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PageSpec is the physical-page portion of a figure spec.
type PageSpec struct {
	WidthIn  float64    `json:"width_in"`
	HeightIn float64    `json:"height_in"`
	DPI      float64    `json:"dpi"`
	Sizing   SizingMode `json:"sizing"`

	// Axes-first targets: the desired axes content size and the minimum
	// margin around the rendered content.
	AxesWidthIn  float64 `json:"axes_width_in"`
	AxesHeightIn float64 `json:"axes_height_in"`
	MarginIn     float64 `json:"margin_in"`

	Background string `json:"background"`

	// Computed by a sizing pass; output only.
	EffectiveWidthIn  float64 `json:"-"`
	EffectiveHeightIn float64 `json:"-"`
}

// AxesSpec styles the axes independently of the data drawn in them.
type AxesSpec struct {
	XRange *Range `json:"x_range,omitempty"`
	YRange *Range `json:"y_range,omitempty"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	Grid      bool   `json:"grid"`
	GridColor string `json:"grid_color"`

	FontFamily    string  `json:"font_family"`
	LabelFontSize float64 `json:"label_fontsize"`
	TickFontSize  float64 `json:"tick_fontsize"`
	EventFontSize float64 `json:"event_fontsize"`
	BoldLabels    bool    `json:"bold_labels"`
}

// TraceSpec selects and styles one named series.
type TraceSpec struct {
	Key           string  `json:"key"`
	Visible       bool    `json:"visible"`
	Color         string  `json:"color"`
	Width         float64 `json:"width"`
	Style         string  `json:"style"` // solid, dash, dot
	Marker        bool    `json:"marker"`
	SecondaryAxis bool    `json:"secondary_axis"`
}

// EventSpec is one timestamped marker with an optional label.
type EventSpec struct {
	Visible bool    `json:"visible"`
	Time    float64 `json:"time"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Style   string  `json:"style"`
	Label   string  `json:"label"`
	Below   bool    `json:"below"`
}

// AnnotationKind enumerates the free-form overlay shapes.
type AnnotationKind string

const (
	KindText  AnnotationKind = "text"
	KindBox   AnnotationKind = "box"
	KindLine  AnnotationKind = "line"
	KindArrow AnnotationKind = "arrow"
)

// CoordSpace is the coordinate system an annotation's geometry is given in.
type CoordSpace string

const (
	SpaceData   CoordSpace = "data"
	SpaceAxes   CoordSpace = "axes"
	SpaceFigure CoordSpace = "figure"
)

// AnnotationSpec is one free-form overlay element.
type AnnotationSpec struct {
	Kind  AnnotationKind `json:"kind"`
	Space CoordSpace     `json:"space"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`

	Text      string  `json:"text"`
	FontSize  float64 `json:"fontsize"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"line_width"`
}

// FigureSpec is the full declarative description of one figure. It is owned
// by the caller and passed into the renderer per build; the renderer never
// retains it.
type FigureSpec struct {
	SchemaVersion int              `json:"schema_version"`
	Page          PageSpec         `json:"page"`
	Axes          AxesSpec         `json:"axes"`
	Traces        []TraceSpec      `json:"traces"`
	Events        []EventSpec      `json:"events"`
	Annotations   []AnnotationSpec `json:"annotations"`

	// ShowEventLabels only takes effect while ShowEvents is set; disabling
	// events disables their labels too.
	ShowEvents      bool `json:"show_events"`
	ShowEventLabels bool `json:"show_event_labels"`

	LegendVisible  bool    `json:"legend_visible"`
	LegendFontSize float64 `json:"legend_fontsize"`
	LegendLoc      string  `json:"legend_loc"`
}

// DefaultFigureSpec returns a spec with every field at its documented
// default: a 7.5x5 inch page at 300 dpi, figure-first sizing, the four
// standard traces with only the inner diameter visible.
func DefaultFigureSpec() FigureSpec {
	return FigureSpec{
		SchemaVersion: SchemaVersion,
		Page: PageSpec{
			WidthIn:      7.5,
			HeightIn:     5,
			DPI:          300,
			Sizing:       SizingFigureFirst,
			AxesWidthIn:  6,
			AxesHeightIn: 3.5,
			MarginIn:     0.4,
			Background:   "#ffffff",
		},
		Axes: AxesSpec{
			XLabel:        "Time (s)",
			YLabel:        "Diameter (um)",
			GridColor:     "#e0e0e0",
			FontFamily:    "Liberation",
			LabelFontSize: 12,
			TickFontSize:  10,
			EventFontSize: 9,
		},
		Traces: []TraceSpec{
			{Key: "inner", Visible: true, Color: "#1f77b4", Width: 1.5, Style: "solid"},
			{Key: "outer", Visible: false, Color: "#d62728", Width: 1.5, Style: "solid"},
			{Key: "avg_pressure", Visible: false, Color: "#2ca02c", Width: 1.2, Style: "solid"},
			{Key: "set_pressure", Visible: false, Color: "#7f7f7f", Width: 1.0, Style: "dash"},
		},
		ShowEvents:      true,
		ShowEventLabels: true,
		LegendVisible:   true,
		LegendFontSize:  9,
		LegendLoc:       "top-right",
	}
}

func defaultTraceSpec(key string) TraceSpec {
	for _, t := range DefaultFigureSpec().Traces {
		if t.Key == key {
			return t
		}
	}
	return TraceSpec{Key: key, Visible: true, Color: "#1f77b4", Width: 1.5, Style: "solid"}
}

// ToMap converts the spec to a plain string-keyed document, the conceptual
// persisted form.
func (s FigureSpec) ToMap() map[string]any {
	page := map[string]any{
		"width_in":       s.Page.WidthIn,
		"height_in":      s.Page.HeightIn,
		"dpi":            s.Page.DPI,
		"sizing":         string(s.Page.Sizing),
		"axes_width_in":  s.Page.AxesWidthIn,
		"axes_height_in": s.Page.AxesHeightIn,
		"margin_in":      s.Page.MarginIn,
		"background":     s.Page.Background,
	}
	axes := map[string]any{
		"x_label":        s.Axes.XLabel,
		"y_label":        s.Axes.YLabel,
		"grid":           s.Axes.Grid,
		"grid_color":     s.Axes.GridColor,
		"font_family":    s.Axes.FontFamily,
		"label_fontsize": s.Axes.LabelFontSize,
		"tick_fontsize":  s.Axes.TickFontSize,
		"event_fontsize": s.Axes.EventFontSize,
		"bold_labels":    s.Axes.BoldLabels,
	}
	if s.Axes.XRange != nil {
		axes["x_range"] = []any{s.Axes.XRange.Min, s.Axes.XRange.Max}
	}
	if s.Axes.YRange != nil {
		axes["y_range"] = []any{s.Axes.YRange.Min, s.Axes.YRange.Max}
	}

	traces := make([]any, 0, len(s.Traces))
	for _, t := range s.Traces {
		traces = append(traces, map[string]any{
			"key":            t.Key,
			"visible":        t.Visible,
			"color":          t.Color,
			"width":          t.Width,
			"style":          t.Style,
			"marker":         t.Marker,
			"secondary_axis": t.SecondaryAxis,
		})
	}
	events := make([]any, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, map[string]any{
			"visible": e.Visible,
			"time":    e.Time,
			"color":   e.Color,
			"width":   e.Width,
			"style":   e.Style,
			"label":   e.Label,
			"below":   e.Below,
		})
	}
	annotations := make([]any, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		annotations = append(annotations, map[string]any{
			"kind":       string(a.Kind),
			"space":      string(a.Space),
			"x":          a.X,
			"y":          a.Y,
			"x2":         a.X2,
			"y2":         a.Y2,
			"text":       a.Text,
			"fontsize":   a.FontSize,
			"color":      a.Color,
			"line_width": a.LineWidth,
		})
	}

	return map[string]any{
		"schema_version":    s.SchemaVersion,
		"page":              page,
		"axes":              axes,
		"traces":            traces,
		"events":            events,
		"annotations":       annotations,
		"show_events":       s.ShowEvents,
		"show_event_labels": s.ShowEventLabels,
		"legend_visible":    s.LegendVisible,
		"legend_fontsize":   s.LegendFontSize,
		"legend_loc":        s.LegendLoc,
	}
}

// FromMap rebuilds a spec from a persisted document. Unknown keys are
// ignored and missing keys keep their defaults; a malformed document never
// fails to load.
func FromMap(m map[string]any) FigureSpec {
	s := DefaultFigureSpec()
	if m == nil {
		return s
	}
	s.SchemaVersion = int(numAt(m, "schema_version", float64(SchemaVersion)))

	if page, ok := mapAt(m, "page"); ok {
		s.Page.WidthIn = numAt(page, "width_in", s.Page.WidthIn)
		s.Page.HeightIn = numAt(page, "height_in", s.Page.HeightIn)
		s.Page.DPI = numAt(page, "dpi", s.Page.DPI)
		if mode := SizingMode(strAt(page, "sizing", string(s.Page.Sizing))); mode == SizingFigureFirst || mode == SizingAxesFirst {
			s.Page.Sizing = mode
		}
		s.Page.AxesWidthIn = numAt(page, "axes_width_in", s.Page.AxesWidthIn)
		s.Page.AxesHeightIn = numAt(page, "axes_height_in", s.Page.AxesHeightIn)
		s.Page.MarginIn = numAt(page, "margin_in", s.Page.MarginIn)
		s.Page.Background = strAt(page, "background", s.Page.Background)
	}

	if axes, ok := mapAt(m, "axes"); ok {
		s.Axes.XRange = rangeAt(axes, "x_range")
		s.Axes.YRange = rangeAt(axes, "y_range")
		s.Axes.XLabel = strAt(axes, "x_label", s.Axes.XLabel)
		s.Axes.YLabel = strAt(axes, "y_label", s.Axes.YLabel)
		s.Axes.Grid = boolAt(axes, "grid", s.Axes.Grid)
		s.Axes.GridColor = strAt(axes, "grid_color", s.Axes.GridColor)
		s.Axes.FontFamily = strAt(axes, "font_family", s.Axes.FontFamily)
		s.Axes.LabelFontSize = numAt(axes, "label_fontsize", s.Axes.LabelFontSize)
		s.Axes.TickFontSize = numAt(axes, "tick_fontsize", s.Axes.TickFontSize)
		s.Axes.EventFontSize = numAt(axes, "event_fontsize", s.Axes.EventFontSize)
		s.Axes.BoldLabels = boolAt(axes, "bold_labels", s.Axes.BoldLabels)
	}

	if traces, ok := listAt(m, "traces"); ok {
		s.Traces = nil
		for _, item := range traces {
			tm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			t := defaultTraceSpec(strAt(tm, "key", ""))
			t.Visible = boolAt(tm, "visible", t.Visible)
			t.Color = strAt(tm, "color", t.Color)
			t.Width = numAt(tm, "width", t.Width)
			t.Style = strAt(tm, "style", t.Style)
			t.Marker = boolAt(tm, "marker", t.Marker)
			t.SecondaryAxis = boolAt(tm, "secondary_axis", t.SecondaryAxis)
			s.Traces = append(s.Traces, t)
		}
	}

	if events, ok := listAt(m, "events"); ok {
		for _, item := range events {
			em, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s.Events = append(s.Events, EventSpec{
				Visible: boolAt(em, "visible", true),
				Time:    numAt(em, "time", 0),
				Color:   strAt(em, "color", ""),
				Width:   numAt(em, "width", 1),
				Style:   strAt(em, "style", "dash"),
				Label:   strAt(em, "label", ""),
				Below:   boolAt(em, "below", false),
			})
		}
	}

	if annotations, ok := listAt(m, "annotations"); ok {
		for _, item := range annotations {
			am, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s.Annotations = append(s.Annotations, AnnotationSpec{
				Kind:      AnnotationKind(strAt(am, "kind", string(KindText))),
				Space:     CoordSpace(strAt(am, "space", string(SpaceData))),
				X:         numAt(am, "x", 0),
				Y:         numAt(am, "y", 0),
				X2:        numAt(am, "x2", 0),
				Y2:        numAt(am, "y2", 0),
				Text:      strAt(am, "text", ""),
				FontSize:  numAt(am, "fontsize", 10),
				Color:     strAt(am, "color", ""),
				LineWidth: numAt(am, "line_width", 1),
			})
		}
	}

	s.ShowEvents = boolAt(m, "show_events", s.ShowEvents)
	s.ShowEventLabels = boolAt(m, "show_event_labels", s.ShowEventLabels)
	s.LegendVisible = boolAt(m, "legend_visible", s.LegendVisible)
	s.LegendFontSize = numAt(m, "legend_fontsize", s.LegendFontSize)
	s.LegendLoc = strAt(m, "legend_loc", s.LegendLoc)
	return s
}

// ToJSON serializes the spec document.
func (s FigureSpec) ToJSON() ([]byte, error) {
	b, err := json.MarshalIndent(s.ToMap(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode figure spec: %w", err)
	}
	return b, nil
}

// FromJSON loads a spec document, tolerating unknown and missing fields.
func FromJSON(data []byte) (FigureSpec, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return FigureSpec{}, fmt.Errorf("decode figure spec: %w", err)
	}
	return FromMap(m), nil
}

// Tolerant document accessors.

func numAt(m map[string]any, key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

func strAt(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func boolAt(m map[string]any, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func mapAt(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key].(map[string]any)
	return v, ok
}

func listAt(m map[string]any, key string) ([]any, bool) {
	v, ok := m[key].([]any)
	return v, ok
}

func rangeAt(m map[string]any, key string) *Range {
	v, ok := m[key].([]any)
	if !ok || len(v) != 2 {
		return nil
	}
	pair := map[string]any{"min": v[0], "max": v[1]}
	return &Range{Min: numAt(pair, "min", 0), Max: numAt(pair, "max", 0)}
}
