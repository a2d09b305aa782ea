package figure

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// maxExportPixels caps the longest raster edge. Requests past it are reduced
// to the largest dpi that fits, never rejected.
const maxExportPixels = 8000.0

// Export renders a figure to path. An empty format is inferred from the file
// extension. Raster formats (png, tiff, jpeg) honor the dpi argument subject
// to the pixel ceiling; vector formats (pdf, svg) ignore it.
func (r *Renderer) Export(fig *Figure, path, format string, dpi float64) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := r.write(fig, f, format, dpi); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Renderer) write(fig *Figure, w io.Writer, format string, dpi float64) error {
	width := vg.Length(fig.WidthIn) * vg.Inch
	height := vg.Length(fig.HeightIn) * vg.Inch

	switch format {
	case "png", "tiff", "tif", "jpg", "jpeg":
		dpi = r.clampExportDPI(fig, dpi)
		c := vgimg.NewWith(
			vgimg.UseWH(width, height),
			vgimg.UseDPI(int(math.Round(dpi))),
			vgimg.UseBackgroundColor(parseColor(fig.background, color.White)),
		)
		fig.Draw(draw.New(c))
		var err error
		switch format {
		case "png":
			_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		case "tiff", "tif":
			_, err = vgimg.TiffCanvas{Canvas: c}.WriteTo(w)
		default:
			_, err = vgimg.JpegCanvas{Canvas: c}.WriteTo(w)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		return nil

	case "pdf":
		c := vgpdf.New(width, height)
		fig.Draw(draw.New(c))
		if _, err := c.WriteTo(w); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		return nil

	case "svg":
		c := vgsvg.New(width, height)
		fig.Draw(draw.New(c))
		if _, err := c.WriteTo(w); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// clampExportDPI reduces the requested dpi so the longest page edge stays
// within the raster pixel ceiling.
func (r *Renderer) clampExportDPI(fig *Figure, dpi float64) float64 {
	if dpi <= 0 {
		dpi = fig.DPI
	}
	if dpi <= 0 {
		dpi = 300
	}
	longest := math.Max(fig.WidthIn, fig.HeightIn)
	if longest <= 0 {
		return dpi
	}
	if longest*dpi > maxExportPixels {
		reduced := math.Floor(maxExportPixels / longest)
		r.logger.Warn("export exceeds pixel ceiling, reducing dpi",
			"requested_dpi", dpi, "effective_dpi", reduced, "longest_edge_in", longest)
		dpi = reduced
	}
	return dpi
}
