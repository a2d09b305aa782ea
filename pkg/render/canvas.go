// Package render rasterizes event-label draw commands onto an RGBA canvas
// and supplies the text measurer that feeds the labeler's metrics cache.
package render

import (
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/vr-oj/VasoAnalyzer-sub000/pkg/label"
)

type faceKey struct {
	size   float64
	weight label.FontWeight
	italic bool
}

// Canvas is a raster surface executing labeler draw commands. It implements
// label.TextMeasurer, so a host can hand the same canvas to the labeler for
// measurement and to Execute for drawing.
//
// Font family selection falls back to the embedded Go typeface; weight and
// italic variants are honored.
type Canvas struct {
	dc    *gg.Context
	dpi   float64
	faces map[faceKey]font.Face
}

// NewCanvas creates a canvas of the given pixel size.
func NewCanvas(widthPx, heightPx int, dpi float64) *Canvas {
	if dpi <= 0 {
		dpi = 96
	}
	dc := gg.NewContext(widthPx, heightPx)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return &Canvas{
		dc:    dc,
		dpi:   dpi,
		faces: make(map[faceKey]font.Face),
	}
}

// DPI reports the canvas resolution.
func (c *Canvas) DPI() float64 { return c.dpi }

func (c *Canvas) face(f label.FontSpec) (font.Face, error) {
	size := f.Size
	if size <= 0 {
		size = 10
	}
	key := faceKey{size: size, weight: f.Weight, italic: f.Italic}
	if fc, ok := c.faces[key]; ok {
		return fc, nil
	}

	var ttf []byte
	switch {
	case f.Weight == label.WeightBold && f.Italic:
		ttf = gobolditalic.TTF
	case f.Weight == label.WeightBold:
		ttf = gobold.TTF
	case f.Weight == label.WeightSemiBold && f.Italic:
		ttf = gomediumitalic.TTF
	case f.Weight == label.WeightSemiBold:
		ttf = gomedium.TTF
	case f.Italic:
		ttf = goitalic.TTF
	default:
		ttf = goregular.TTF
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	fc, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	c.faces[key] = fc
	return fc, nil
}

// MeasureText implements label.TextMeasurer.
func (c *Canvas) MeasureText(text string, f label.FontSpec) (float64, float64, error) {
	face, err := c.face(f)
	if err != nil {
		return 0, 0, err
	}
	c.dc.SetFontFace(face)
	w, _ := c.dc.MeasureString(text)
	return w, c.dc.FontHeight(), nil
}

// Execute draws the given commands in ascending z order.
func (c *Canvas) Execute(cmds []label.Command) error {
	ordered := make([]label.Command, len(cmds))
	copy(ordered, cmds)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZOrder() < ordered[j].ZOrder() })

	for _, cmd := range ordered {
		switch v := cmd.(type) {
		case label.LineCommand:
			c.drawLine(v)
		case label.RectCommand:
			c.drawRect(v)
		case label.TextCommand:
			if err := c.drawText(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown draw command %T", cmd)
		}
	}
	return nil
}

func (c *Canvas) drawLine(v label.LineCommand) {
	c.dc.SetRGBA(v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	w := v.Width
	if w <= 0 {
		w = 1
	}
	c.dc.SetLineWidth(w)
	if v.Dashed {
		c.dc.SetDash(4, 3)
	}
	c.dc.DrawLine(v.X1, v.Y1, v.X2, v.Y2)
	c.dc.Stroke()
	if v.Dashed {
		c.dc.SetDash()
	}
}

func (c *Canvas) drawRect(v label.RectCommand) {
	if v.W <= 0 || v.H <= 0 {
		return
	}
	c.dc.DrawRectangle(v.X, v.Y, v.W, v.H)
	c.dc.SetRGBA(v.Fill.R, v.Fill.G, v.Fill.B, v.Fill.A)
	if v.HasEdge {
		c.dc.FillPreserve()
		c.dc.SetRGBA(v.Edge.R, v.Edge.G, v.Edge.B, v.Edge.A)
		c.dc.SetLineWidth(1)
		c.dc.Stroke()
	} else {
		c.dc.Fill()
	}
}

func (c *Canvas) drawText(v label.TextCommand) error {
	if v.Text == "" {
		return nil
	}
	face, err := c.face(v.Font)
	if err != nil {
		return err
	}
	c.dc.SetFontFace(face)
	c.dc.SetRGBA(v.Color.R, v.Color.G, v.Color.B, v.Color.A)

	ax := 0.0
	switch v.HAlign {
	case label.AlignCenter:
		ax = 0.5
	case label.AlignRight:
		ax = 1
	}
	ay := 1.0
	switch v.VAlign {
	case label.AlignMiddle:
		ay = 0.5
	case label.AlignBottom:
		ay = 0
	}

	if v.RotationDeg != 0 {
		c.dc.Push()
		c.dc.RotateAbout(-gg.Radians(v.RotationDeg), v.X, v.Y)
		c.dc.DrawStringAnchored(v.Text, v.X, v.Y, ax, ay)
		c.dc.Pop()
		return nil
	}
	c.dc.DrawStringAnchored(v.Text, v.X, v.Y, ax, ay)
	return nil
}

// Image returns the rendered frame.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// WritePNG encodes the canvas as PNG.
func (c *Canvas) WritePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }
