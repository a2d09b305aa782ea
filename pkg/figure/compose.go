package figure

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a sized, drawable build of one FigureSpec. The plot inside is
// fully assembled; Draw renders it into any vg canvas.
type Figure struct {
	Plot *plot.Plot

	WidthIn  float64
	HeightIn float64
	MarginIn float64
	DPI      float64

	background string
	figAnns    []AnnotationSpec
}

// Draw renders the figure: the plot inside the margin crop, then any
// figure-space annotations over the full page.
func (f *Figure) Draw(c draw.Canvas) {
	inner := c
	if f.MarginIn > 0 {
		m := vg.Length(f.MarginIn) * vg.Inch
		inner = draw.Crop(c, m, -m, m, -m)
	}
	f.Plot.Draw(inner)

	if len(f.figAnns) > 0 {
		pt := func(_ CoordSpace, x, y float64) vg.Point {
			return vg.Point{
				X: c.Min.X + vg.Length(x)*(c.Max.X-c.Min.X),
				Y: c.Min.Y + vg.Length(y)*(c.Max.Y-c.Min.Y),
			}
		}
		for _, item := range f.figAnns {
			drawAnnotation(c, item, pt)
		}
	}
}

// Build assembles the plot for a spec and resolves its physical size. The
// same spec and data always produce the same figure. The spec's effective
// page size fields are filled in as a side effect.
func (r *Renderer) Build(spec *FigureSpec) (*Figure, error) {
	p, _ := r.buildPlot(spec)

	dpi := spec.Page.DPI
	if dpi <= 0 {
		dpi = 300
	}

	var wIn, hIn float64
	if spec.Page.Sizing == SizingAxesFirst {
		wIn, hIn = r.axesFirstSize(p, spec, dpi)
	} else {
		wIn, hIn = spec.Page.WidthIn, spec.Page.HeightIn
	}
	wIn = clampPageIn(wIn)
	hIn = clampPageIn(hIn)
	spec.Page.EffectiveWidthIn = wIn
	spec.Page.EffectiveHeightIn = hIn

	var figAnns []AnnotationSpec
	for _, a := range spec.Annotations {
		if a.Space == SpaceFigure {
			figAnns = append(figAnns, a)
		}
	}

	return &Figure{
		Plot:       p,
		WidthIn:    wIn,
		HeightIn:   hIn,
		MarginIn:   spec.Page.MarginIn,
		DPI:        dpi,
		background: spec.Page.Background,
		figAnns:    figAnns,
	}, nil
}

// axesFirstSize derives the page size that gives the axes content exactly
// the requested physical dimensions. The plot is drawn once on a scratch
// canvas to measure how much room its decorations (tick labels, axis labels,
// legend) claim; the page is then the content plus decorations plus margins.
// Tick selection depends only on the axis ranges, so the measurement pass
// and the final render agree.
func (r *Renderer) axesFirstSize(p *plot.Plot, spec *FigureSpec, dpi float64) (float64, float64) {
	margin := spec.Page.MarginIn
	scratchW := vg.Length(spec.Page.AxesWidthIn+2*margin) * vg.Inch
	scratchH := vg.Length(spec.Page.AxesHeightIn+2*margin) * vg.Inch

	c := vgimg.NewWith(vgimg.UseWH(scratchW, scratchH), vgimg.UseDPI(int(dpi)))
	da := draw.New(c)
	p.Draw(da)

	data := p.DataCanvas(da)
	decoW := float64((da.Max.X-da.Min.X)-(data.Max.X-data.Min.X)) / float64(vg.Inch)
	decoH := float64((da.Max.Y-da.Min.Y)-(data.Max.Y-data.Min.Y)) / float64(vg.Inch)
	if decoW < 0 {
		decoW = 0
	}
	if decoH < 0 {
		decoH = 0
	}

	return spec.Page.AxesWidthIn + decoW + 2*margin,
		spec.Page.AxesHeightIn + decoH + 2*margin
}
