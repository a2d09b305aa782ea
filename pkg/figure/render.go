package figure

import (
	"image/color"
	"log/slog"
	"math"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vr-oj/VasoAnalyzer-sub000/pkg/label"
)

// SeriesSource resolves a trace key to its data. trace.Store satisfies it.
type SeriesSource interface {
	Series(key string) (x, y []float64, ok bool)
}

// Renderer turns FigureSpecs into drawable figures against one data source.
type Renderer struct {
	source SeriesSource
	style  StyleConfig
	logger *slog.Logger
}

// NewRenderer builds a renderer. A nil logger falls back to slog.Default.
func NewRenderer(source SeriesSource, style StyleConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{source: source, style: style, logger: logger}
}

// buildPlot assembles the plot in pipeline order: traces, axis styling,
// event markers, event labels, annotations, legend. It returns the number of
// series actually drawn.
func (r *Renderer) buildPlot(spec *FigureSpec) (*plot.Plot, int) {
	p := plot.New()
	r.styleAxes(p, spec)

	if spec.Axes.Grid {
		g := plotter.NewGrid()
		gc := parseColor(spec.Axes.GridColor, parseColor(r.style.GridColor, color.Gray{Y: 0xe0}))
		g.Vertical.Color = gc
		g.Horizontal.Color = gc
		p.Add(g)
	}

	type legendEntry struct {
		name string
		line *plotter.Line
	}
	var entries []legendEntry

	var secondary []TraceSpec
	drawn := 0
	for _, ts := range spec.Traces {
		if !ts.Visible {
			continue
		}
		if ts.SecondaryAxis {
			secondary = append(secondary, ts)
			continue
		}
		line, ok := r.traceLine(ts)
		if !ok {
			continue
		}
		p.Add(line)
		drawn++
		entries = append(entries, legendEntry{name: ts.Key, line: line})
	}

	// Explicit ranges win over the autoscale that Add accumulated.
	if spec.Axes.XRange != nil {
		p.X.Min, p.X.Max = spec.Axes.XRange.Min, spec.Axes.XRange.Max
	}
	if spec.Axes.YRange != nil {
		p.Y.Min, p.Y.Max = spec.Axes.YRange.Min, spec.Axes.YRange.Max
	}

	// Secondary-axis traces are rescaled into the primary y-range and get
	// their own tick scale on the right edge.
	if len(secondary) > 0 && drawn > 0 {
		yMin, yMax := p.Y.Min, p.Y.Max
		secMin, secMax := math.Inf(1), math.Inf(-1)
		var lines []struct {
			ts   TraceSpec
			x, y []float64
		}
		for _, ts := range secondary {
			xs, ys, ok := r.source.Series(ts.Key)
			if !ok || len(xs) == 0 {
				r.logger.Warn("trace series missing, skipped", "key", ts.Key)
				continue
			}
			for _, v := range ys {
				secMin = math.Min(secMin, v)
				secMax = math.Max(secMax, v)
			}
			lines = append(lines, struct {
				ts   TraceSpec
				x, y []float64
			}{ts, xs, ys})
		}
		if len(lines) > 0 && secMax > secMin {
			remap := func(v float64) float64 {
				return yMin + (v-secMin)/(secMax-secMin)*(yMax-yMin)
			}
			for _, l := range lines {
				xys := make(plotter.XYs, len(l.x))
				for i := range l.x {
					xys[i].X = l.x[i]
					xys[i].Y = remap(l.y[i])
				}
				line, err := plotter.NewLine(xys)
				if err != nil {
					continue
				}
				r.applyLineStyle(line, l.ts)
				p.Add(line)
				drawn++
				entries = append(entries, legendEntry{name: l.ts.Key, line: line})
			}
			p.Add(&rightScale{min: secMin, max: secMax, yMin: yMin, yMax: yMax,
				fontSize: r.tickFontSize(spec)})
		}
	}

	if drawn == 0 {
		// Placeholder frame: fixed ranges and a centered notice instead of
		// a failed build.
		if spec.Axes.XRange == nil {
			p.X.Min, p.X.Max = 0, 1
		}
		if spec.Axes.YRange == nil {
			p.Y.Min, p.Y.Max = 0, 1
		}
		p.Add(&noticeBox{text: "no trace data", fontSize: r.style.AxisFontSize})
	}

	if spec.ShowEvents && len(spec.Events) > 0 {
		p.Add(&eventMarkers{events: spec.Events})
		if spec.ShowEventLabels {
			p.Add(&eventLabels{
				events:   spec.Events,
				fontSize: r.eventFontSize(spec),
				logger:   r.logger,
			})
		}
	}

	if len(spec.Annotations) > 0 {
		p.Add(&annotationLayer{items: spec.Annotations})
	}

	// The legend only earns its space with more than one series.
	if spec.LegendVisible && drawn > 1 {
		for _, e := range entries {
			p.Legend.Add(e.name, e.line)
		}
		sz := spec.LegendFontSize
		if sz <= 0 {
			sz = r.style.LegendFontSize
		}
		p.Legend.TextStyle.Font.Size = vg.Points(sz)
		switch spec.LegendLoc {
		case "top-left":
			p.Legend.Top, p.Legend.Left = true, true
		case "bottom-left":
			p.Legend.Top, p.Legend.Left = false, true
		case "bottom-right":
			p.Legend.Top, p.Legend.Left = false, false
		default:
			p.Legend.Top, p.Legend.Left = true, false
		}
	}

	return p, drawn
}

func (r *Renderer) traceLine(ts TraceSpec) (*plotter.Line, bool) {
	xs, ys, ok := r.source.Series(ts.Key)
	if !ok || len(xs) == 0 {
		r.logger.Warn("trace series missing, skipped", "key", ts.Key)
		return nil, false
	}
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i].X = xs[i]
		xys[i].Y = ys[i]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, false
	}
	r.applyLineStyle(line, ts)
	return line, true
}

func (r *Renderer) applyLineStyle(line *plotter.Line, ts TraceSpec) {
	def := parseColor(r.style.TraceColors[ts.Key], color.Black)
	line.LineStyle.Color = parseColor(ts.Color, def)
	w := ts.Width
	if w <= 0 {
		w = 1.5
	}
	line.LineStyle.Width = vg.Points(w)
	line.LineStyle.Dashes = styleDashes(ts.Style)
}

func (r *Renderer) styleAxes(p *plot.Plot, spec *FigureSpec) {
	p.X.Label.Text = spec.Axes.XLabel
	p.Y.Label.Text = spec.Axes.YLabel

	labelSize := spec.Axes.LabelFontSize
	if labelSize <= 0 {
		labelSize = r.style.AxisFontSize
	}
	p.X.Label.TextStyle.Font.Size = vg.Points(labelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(labelSize)
	if spec.Axes.BoldLabels {
		p.X.Label.TextStyle.Font.Weight = xfont.WeightBold
		p.Y.Label.TextStyle.Font.Weight = xfont.WeightBold
	}

	tickSize := r.tickFontSize(spec)
	p.X.Tick.Label.Font.Size = vg.Points(tickSize)
	p.Y.Tick.Label.Font.Size = vg.Points(tickSize)
}

func (r *Renderer) tickFontSize(spec *FigureSpec) float64 {
	if spec.Axes.TickFontSize > 0 {
		return spec.Axes.TickFontSize
	}
	return r.style.TickFontSize
}

func (r *Renderer) eventFontSize(spec *FigureSpec) float64 {
	if spec.Axes.EventFontSize > 0 {
		return spec.Axes.EventFontSize
	}
	return r.style.EventFontSize
}

// eventMarkers draws a vertical guide per visible event. Events outside the
// final x-range are skipped entirely, label included.
type eventMarkers struct {
	events []EventSpec
}

func (m *eventMarkers) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	for _, ev := range m.events {
		if !ev.Visible || ev.Time < plt.X.Min || ev.Time > plt.X.Max {
			continue
		}
		w := ev.Width
		if w <= 0 {
			w = 1
		}
		sty := draw.LineStyle{
			Color:  parseColor(ev.Color, color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}),
			Width:  vg.Points(w),
			Dashes: styleDashes(ev.Style),
		}
		x := trX(ev.Time)
		c.StrokeLine2(sty, x, c.Min.Y, x, c.Max.Y)
	}
}

// eventLabels renders event text through the pixel-space labeler: in-range
// events are clustered, styled, and laid out vertically near the top of the
// axes; below-axis labels are drawn along the bottom edge instead.
type eventLabels struct {
	events   []EventSpec
	fontSize float64
	logger   *slog.Logger
}

func (e *eventLabels) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)

	var above []label.EventEntry
	var below []EventSpec
	for i, ev := range e.events {
		if !ev.Visible || ev.Label == "" || ev.Time < plt.X.Min || ev.Time > plt.X.Max {
			continue
		}
		if ev.Below {
			below = append(below, ev)
			continue
		}
		entry := label.EventEntry{Time: ev.Time, Text: ev.Label, Index: i}
		if ev.Color != "" {
			if nc, ok := parseHex(ev.Color); ok {
				lc := toLabelColor(nc)
				entry.Style.Color = &lc
			}
		}
		above = append(above, entry)
	}

	if len(above) > 0 {
		height := float64(c.Max.Y - c.Min.Y)
		vp := label.Viewport{
			TransformX: func(ts []float64) []float64 {
				out := make([]float64, len(ts))
				for i, t := range ts {
					out[i] = float64(trX(t))
				}
				return out
			},
			Left:   float64(c.Min.X),
			Right:  float64(c.Max.X),
			Top:    0,
			Bottom: height,
			DPI:    72,
		}
		labeler := label.New(styleMeasurer{}, e.logger)
		cmds, err := labeler.Draw(vp, above, label.LayoutOptions{
			Mode:        label.ModeVertical,
			RotationDeg: 90,
			Font:        label.FontSpec{Size: e.fontSize},
		})
		if err != nil {
			e.logger.Warn("event label layout failed", "error", err)
			return
		}
		for _, cmd := range cmds {
			// Guides come from the marker stage; only text is drawn here.
			tc, ok := cmd.(label.TextCommand)
			if !ok {
				continue
			}
			fillLabelText(c, tc, c.Max.Y)
		}
	}

	for _, ev := range below {
		sty := text.Style{
			Color:    parseColor(ev.Color, color.Black),
			Font:     font.From(plotter.DefaultFont, vg.Points(e.fontSize)),
			XAlign:   draw.XCenter,
			YAlign:   draw.YTop,
			Handler:  plot.DefaultTextHandler,
			Rotation: 0,
		}
		c.FillText(sty, vg.Point{X: trX(ev.Time), Y: c.Min.Y - vg.Points(2)}, ev.Label)
	}
}

// styleMeasurer measures text with the plot text handler so labeler metrics
// agree with what FillText will draw.
type styleMeasurer struct{}

func (styleMeasurer) MeasureText(s string, f label.FontSpec) (float64, float64, error) {
	sty := text.Style{
		Font:    labelFont(f),
		Handler: plot.DefaultTextHandler,
	}
	return float64(sty.Width(s)), float64(sty.Height(s)), nil
}

func labelFont(f label.FontSpec) font.Font {
	ft := font.From(plotter.DefaultFont, vg.Points(f.Size))
	switch {
	case f.Weight >= label.WeightBold:
		ft.Weight = xfont.WeightBold
	case f.Weight >= label.WeightSemiBold:
		ft.Weight = xfont.WeightSemiBold
	}
	if f.Italic {
		ft.Style = xfont.StyleItalic
	}
	return ft
}

// fillLabelText converts a labeler text command into a FillText call. Label
// space runs top-down from the axes top, so the y coordinate flips.
func fillLabelText(c draw.Canvas, tc label.TextCommand, top vg.Length) {
	sty := text.Style{
		Color:    toNRGBA(tc.Color),
		Font:     labelFont(tc.Font),
		Rotation: tc.RotationDeg * math.Pi / 180,
		XAlign:   xAlign(tc.HAlign),
		YAlign:   yAlign(tc.VAlign),
		Handler:  plot.DefaultTextHandler,
	}
	c.FillText(sty, vg.Point{X: vg.Length(tc.X), Y: top - vg.Length(tc.Y)}, tc.Text)
}

func xAlign(a label.HAlign) draw.XAlignment {
	switch a {
	case label.AlignCenter:
		return draw.XCenter
	case label.AlignRight:
		return draw.XRight
	}
	return draw.XLeft
}

func yAlign(a label.VAlign) draw.YAlignment {
	switch a {
	case label.AlignMiddle:
		return draw.YCenter
	case label.AlignBottom:
		return draw.YBottom
	}
	return draw.YTop
}

// annotationLayer draws data- and axes-space annotations. Figure-space
// annotations belong to the page, not the axes, and are drawn by Figure.Draw.
type annotationLayer struct {
	items []AnnotationSpec
}

func (a *annotationLayer) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pt := func(space CoordSpace, x, y float64) vg.Point {
		if space == SpaceAxes {
			return vg.Point{
				X: c.Min.X + vg.Length(x)*(c.Max.X-c.Min.X),
				Y: c.Min.Y + vg.Length(y)*(c.Max.Y-c.Min.Y),
			}
		}
		return vg.Point{X: trX(x), Y: trY(y)}
	}
	for _, item := range a.items {
		if item.Space == SpaceFigure {
			continue
		}
		drawAnnotation(c, item, pt)
	}
}

// drawAnnotation renders one annotation given a coordinate mapper.
// Degenerate geometry (empty text, zero-length lines, zero-area boxes) is
// skipped without error.
func drawAnnotation(c draw.Canvas, item AnnotationSpec, pt func(CoordSpace, float64, float64) vg.Point) {
	col := parseColor(item.Color, color.Black)
	lw := item.LineWidth
	if lw <= 0 {
		lw = 1
	}
	ls := draw.LineStyle{Color: col, Width: vg.Points(lw)}

	switch item.Kind {
	case KindText:
		if item.Text == "" {
			return
		}
		size := item.FontSize
		if size <= 0 {
			size = 10
		}
		sty := text.Style{
			Color:   col,
			Font:    font.From(plotter.DefaultFont, vg.Points(size)),
			XAlign:  draw.XLeft,
			YAlign:  draw.YBottom,
			Handler: plot.DefaultTextHandler,
		}
		p := pt(item.Space, item.X, item.Y)
		c.FillText(sty, p, item.Text)

	case KindLine, KindArrow:
		p1 := pt(item.Space, item.X, item.Y)
		p2 := pt(item.Space, item.X2, item.Y2)
		if p1 == p2 {
			return
		}
		c.StrokeLine2(ls, p1.X, p1.Y, p2.X, p2.Y)
		if item.Kind == KindArrow {
			strokeArrowHead(c, ls, p1, p2)
		}

	case KindBox:
		p1 := pt(item.Space, item.X, item.Y)
		p2 := pt(item.Space, item.X2, item.Y2)
		if p1.X == p2.X || p1.Y == p2.Y {
			return
		}
		pts := []vg.Point{
			{X: p1.X, Y: p1.Y},
			{X: p2.X, Y: p1.Y},
			{X: p2.X, Y: p2.Y},
			{X: p1.X, Y: p2.Y},
			{X: p1.X, Y: p1.Y},
		}
		c.StrokeLines(ls, pts)
	}
}

func strokeArrowHead(c draw.Canvas, ls draw.LineStyle, from, to vg.Point) {
	angle := math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X))
	size := 6.0
	for _, da := range []float64{math.Pi * 5 / 6, -math.Pi * 5 / 6} {
		x := to.X + vg.Points(size*math.Cos(angle+da))
		y := to.Y + vg.Points(size*math.Sin(angle+da))
		c.StrokeLine2(ls, to.X, to.Y, x, y)
	}
}

// rightScale draws a secondary tick scale on the right edge of the axes for
// traces remapped into the primary y-range.
type rightScale struct {
	min, max   float64
	yMin, yMax float64
	fontSize   float64
}

func (r *rightScale) Plot(c draw.Canvas, plt *plot.Plot) {
	_, trY := plt.Transforms(&c)
	sty := text.Style{
		Color:   color.Gray{Y: 0x40},
		Font:    font.From(plotter.DefaultFont, vg.Points(r.fontSize)),
		XAlign:  draw.XLeft,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
	ls := draw.LineStyle{Color: color.Gray{Y: 0x40}, Width: vg.Points(0.5)}
	ticks := plot.DefaultTicks{}.Ticks(r.min, r.max)
	for _, t := range ticks {
		if t.IsMinor() {
			continue
		}
		frac := (t.Value - r.min) / (r.max - r.min)
		y := trY(r.yMin + frac*(r.yMax-r.yMin))
		c.StrokeLine2(ls, c.Max.X-vg.Points(3), y, c.Max.X, y)
		c.FillText(sty, vg.Point{X: c.Max.X + vg.Points(4), Y: y}, t.Label)
	}
}

// noticeBox centers a short message inside the axes.
type noticeBox struct {
	text     string
	fontSize float64
}

func (n *noticeBox) Plot(c draw.Canvas, plt *plot.Plot) {
	sty := text.Style{
		Color:   color.Gray{Y: 0x80},
		Font:    font.From(plotter.DefaultFont, vg.Points(n.fontSize)),
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
	c.FillText(sty, vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}, n.text)
}

// styleDashes maps a line style name to vg dash patterns.
func styleDashes(style string) []vg.Length {
	switch style {
	case "dash":
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case "dot":
		return []vg.Length{vg.Points(1.5), vg.Points(2.5)}
	}
	return nil
}

// parseColor resolves a #rrggbb or #rrggbbaa string, falling back to def on
// anything unparseable.
func parseColor(s string, def color.Color) color.Color {
	if c, ok := parseHex(s); ok {
		return c
	}
	return def
}

func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return color.NRGBA{}, false
	}
	c := color.NRGBA{A: 0xff}
	if len(s) == 8 {
		c.A = uint8(v)
		v >>= 8
	}
	c.B = uint8(v)
	c.G = uint8(v >> 8)
	c.R = uint8(v >> 16)
	return c, true
}

func toNRGBA(c label.Color) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(c.R * 255)),
		G: uint8(math.Round(c.G * 255)),
		B: uint8(math.Round(c.B * 255)),
		A: uint8(math.Round(c.A * 255)),
	}
}

func toLabelColor(c color.NRGBA) label.Color {
	return label.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}
