package figure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Recipe HCL shapes. Every attribute is optional; absent fields keep the
// FigureSpec defaults, mirroring the tolerant JSON path.

type recipeFile struct {
	SchemaVersion   *int              `hcl:"schema_version,optional"`
	Page            *pageBlock        `hcl:"page,block"`
	Axes            *axesBlock        `hcl:"axes,block"`
	Traces          []traceBlock      `hcl:"trace,block"`
	Events          []eventBlock      `hcl:"event,block"`
	Annotations     []annotationBlock `hcl:"annotation,block"`
	ShowEvents      *bool             `hcl:"show_events,optional"`
	ShowEventLabels *bool             `hcl:"show_event_labels,optional"`
	LegendVisible   *bool             `hcl:"legend_visible,optional"`
	LegendFontSize  *float64          `hcl:"legend_fontsize,optional"`
	LegendLoc       *string           `hcl:"legend_loc,optional"`
}

type pageBlock struct {
	WidthIn      *float64 `hcl:"width_in,optional"`
	HeightIn     *float64 `hcl:"height_in,optional"`
	DPI          *float64 `hcl:"dpi,optional"`
	Sizing       *string  `hcl:"sizing,optional"`
	AxesWidthIn  *float64 `hcl:"axes_width_in,optional"`
	AxesHeightIn *float64 `hcl:"axes_height_in,optional"`
	MarginIn     *float64 `hcl:"margin_in,optional"`
	Background   *string  `hcl:"background,optional"`
}

type axesBlock struct {
	XRange        []float64 `hcl:"x_range,optional"`
	YRange        []float64 `hcl:"y_range,optional"`
	XLabel        *string   `hcl:"x_label,optional"`
	YLabel        *string   `hcl:"y_label,optional"`
	Grid          *bool     `hcl:"grid,optional"`
	GridColor     *string   `hcl:"grid_color,optional"`
	FontFamily    *string   `hcl:"font_family,optional"`
	LabelFontSize *float64  `hcl:"label_fontsize,optional"`
	TickFontSize  *float64  `hcl:"tick_fontsize,optional"`
	EventFontSize *float64  `hcl:"event_fontsize,optional"`
	BoldLabels    *bool     `hcl:"bold_labels,optional"`
}

type traceBlock struct {
	Key           string   `hcl:"key,label"`
	Visible       *bool    `hcl:"visible,optional"`
	Color         *string  `hcl:"color,optional"`
	Width         *float64 `hcl:"width,optional"`
	Style         *string  `hcl:"style,optional"`
	Marker        *bool    `hcl:"marker,optional"`
	SecondaryAxis *bool    `hcl:"secondary_axis,optional"`
}

type eventBlock struct {
	Time    float64  `hcl:"time"`
	Label   *string  `hcl:"label,optional"`
	Visible *bool    `hcl:"visible,optional"`
	Color   *string  `hcl:"color,optional"`
	Width   *float64 `hcl:"width,optional"`
	Style   *string  `hcl:"style,optional"`
	Below   *bool    `hcl:"below,optional"`
}

type annotationBlock struct {
	Kind      string   `hcl:"kind,label"`
	Space     *string  `hcl:"space,optional"`
	X         *float64 `hcl:"x,optional"`
	Y         *float64 `hcl:"y,optional"`
	X2        *float64 `hcl:"x2,optional"`
	Y2        *float64 `hcl:"y2,optional"`
	Text      *string  `hcl:"text,optional"`
	FontSize  *float64 `hcl:"fontsize,optional"`
	Color     *string  `hcl:"color,optional"`
	LineWidth *float64 `hcl:"line_width,optional"`
}

// recipeEvalContext exposes small color helpers so recipes can write
// rgb(31, 119, 180) instead of hand-assembling hex strings.
func recipeEvalContext() *hcl.EvalContext {
	rgbFn := function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "r", Type: cty.Number},
			{Name: "g", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			r, g, b := ctyInt(args[0]), ctyInt(args[1]), ctyInt(args[2])
			return cty.StringVal(fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))), nil
		},
	})
	rgbaFn := function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "r", Type: cty.Number},
			{Name: "g", Type: cty.Number},
			{Name: "b", Type: cty.Number},
			{Name: "a", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			r, g, b, a := ctyInt(args[0]), ctyInt(args[1]), ctyInt(args[2]), ctyInt(args[3])
			return cty.StringVal(fmt.Sprintf("#%02x%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b), clampByte(a))), nil
		},
	})
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"rgb":  rgbFn,
			"rgba": rgbaFn,
		},
	}
}

func ctyInt(v cty.Value) int {
	i, _ := v.AsBigFloat().Int64()
	return int(i)
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ParseRecipe decodes an HCL recipe into a FigureSpec, starting from
// defaults and overlaying only what the document sets.
func ParseRecipe(src []byte, filename string) (FigureSpec, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return FigureSpec{}, fmt.Errorf("parse recipe %s: %w", filename, diags)
	}

	var r recipeFile
	if diags := gohcl.DecodeBody(f.Body, recipeEvalContext(), &r); diags.HasErrors() {
		return FigureSpec{}, fmt.Errorf("decode recipe %s: %w", filename, diags)
	}

	s := DefaultFigureSpec()
	if r.SchemaVersion != nil {
		s.SchemaVersion = *r.SchemaVersion
	}
	if r.Page != nil {
		setF(&s.Page.WidthIn, r.Page.WidthIn)
		setF(&s.Page.HeightIn, r.Page.HeightIn)
		setF(&s.Page.DPI, r.Page.DPI)
		if r.Page.Sizing != nil {
			if mode := SizingMode(*r.Page.Sizing); mode == SizingFigureFirst || mode == SizingAxesFirst {
				s.Page.Sizing = mode
			}
		}
		setF(&s.Page.AxesWidthIn, r.Page.AxesWidthIn)
		setF(&s.Page.AxesHeightIn, r.Page.AxesHeightIn)
		setF(&s.Page.MarginIn, r.Page.MarginIn)
		setS(&s.Page.Background, r.Page.Background)
	}
	if r.Axes != nil {
		if len(r.Axes.XRange) == 2 {
			s.Axes.XRange = &Range{Min: r.Axes.XRange[0], Max: r.Axes.XRange[1]}
		}
		if len(r.Axes.YRange) == 2 {
			s.Axes.YRange = &Range{Min: r.Axes.YRange[0], Max: r.Axes.YRange[1]}
		}
		setS(&s.Axes.XLabel, r.Axes.XLabel)
		setS(&s.Axes.YLabel, r.Axes.YLabel)
		setB(&s.Axes.Grid, r.Axes.Grid)
		setS(&s.Axes.GridColor, r.Axes.GridColor)
		setS(&s.Axes.FontFamily, r.Axes.FontFamily)
		setF(&s.Axes.LabelFontSize, r.Axes.LabelFontSize)
		setF(&s.Axes.TickFontSize, r.Axes.TickFontSize)
		setF(&s.Axes.EventFontSize, r.Axes.EventFontSize)
		setB(&s.Axes.BoldLabels, r.Axes.BoldLabels)
	}
	if len(r.Traces) > 0 {
		s.Traces = nil
		for _, tb := range r.Traces {
			t := defaultTraceSpec(tb.Key)
			setB(&t.Visible, tb.Visible)
			setS(&t.Color, tb.Color)
			setF(&t.Width, tb.Width)
			setS(&t.Style, tb.Style)
			setB(&t.Marker, tb.Marker)
			setB(&t.SecondaryAxis, tb.SecondaryAxis)
			s.Traces = append(s.Traces, t)
		}
	}
	for _, eb := range r.Events {
		e := EventSpec{Visible: true, Time: eb.Time, Width: 1, Style: "dash"}
		setS(&e.Label, eb.Label)
		setB(&e.Visible, eb.Visible)
		setS(&e.Color, eb.Color)
		setF(&e.Width, eb.Width)
		setS(&e.Style, eb.Style)
		setB(&e.Below, eb.Below)
		s.Events = append(s.Events, e)
	}
	for _, ab := range r.Annotations {
		a := AnnotationSpec{Kind: AnnotationKind(ab.Kind), Space: SpaceData, FontSize: 10, LineWidth: 1}
		if ab.Space != nil {
			a.Space = CoordSpace(*ab.Space)
		}
		setF(&a.X, ab.X)
		setF(&a.Y, ab.Y)
		setF(&a.X2, ab.X2)
		setF(&a.Y2, ab.Y2)
		setS(&a.Text, ab.Text)
		setF(&a.FontSize, ab.FontSize)
		setS(&a.Color, ab.Color)
		setF(&a.LineWidth, ab.LineWidth)
		s.Annotations = append(s.Annotations, a)
	}
	setB(&s.ShowEvents, r.ShowEvents)
	setB(&s.ShowEventLabels, r.ShowEventLabels)
	setB(&s.LegendVisible, r.LegendVisible)
	setF(&s.LegendFontSize, r.LegendFontSize)
	setS(&s.LegendLoc, r.LegendLoc)
	return s, nil
}

// LoadRecipe reads a figure document from disk, dispatching on extension:
// .hcl parses as a recipe, anything else as a JSON spec document.
func LoadRecipe(path string) (FigureSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FigureSpec{}, fmt.Errorf("read recipe: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseRecipe(data, filepath.Base(path))
	}
	return FromJSON(data)
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setS(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setB(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
