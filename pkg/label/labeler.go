// Package label lays out timestamped event annotations over a trace plot:
// it clusters events that collide in pixel space, resolves their text and
// style, and emits non-overlapping draw commands for the host canvas.
package label

import (
	"fmt"
	"log/slog"
)

// Labeler is the event-label layout engine. It holds no state across draws
// except the text-metrics cache, which it invalidates when the viewport DPI
// changes. A Labeler (and its cache) belongs to exactly one host canvas and
// one thread; callers needing per-viewport independence instantiate one
// Labeler per viewport.
type Labeler struct {
	cache    *MetricsCache
	measurer TextMeasurer
	logger   *slog.Logger
	lastDPI  float64
}

// New creates a labeler measuring text through the given measurer. A nil
// measurer is allowed; all labels are then treated as zero-width.
func New(measurer TextMeasurer, logger *slog.Logger) *Labeler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Labeler{
		cache:    NewMetricsCache(),
		measurer: measurer,
		logger:   logger,
	}
}

// Cache exposes the labeler's metrics cache.
func (l *Labeler) Cache() *MetricsCache { return l.cache }

// Draw lays out the given events for the current viewport and returns the
// draw commands for one frame. Successive calls must be sequential; the
// labeler is not reentrant within a draw.
//
// An unknown layout mode is a programming error and the only condition under
// which Draw fails.
func (l *Labeler) Draw(vp Viewport, events []EventEntry, opts LayoutOptions) ([]Command, error) {
	opts = opts.withDefaults()
	if vp.DPI != l.lastDPI {
		l.cache.Clear()
		l.lastDPI = vp.DPI
	}

	clusters := Cluster(events, vp, opts)
	switch opts.Mode {
	case ModeVertical:
		return l.drawVertical(vp, clusters, opts), nil
	case ModeHorizontalInside:
		return l.drawHorizontal(vp, clusters, opts, false), nil
	case ModeHorizontalBelt:
		return l.drawHorizontal(vp, clusters, opts, true), nil
	default:
		return nil, fmt.Errorf("unknown layout mode %d", opts.Mode)
	}
}

// drawVertical gives every cluster a dashed guide line spanning each panel
// that shares the time scale, plus one rotated label near the top of the
// plotting area, right-aligned so the label's end sits at the connector.
//
// No collision resolution happens beyond clustering: under extreme density
// rotated labels may overlap. That matches the original behavior and is an
// accepted tradeoff of this mode.
func (l *Labeler) drawVertical(vp Viewport, clusters []ClusteredLabel, opts LayoutOptions) []Command {
	panels := vp.Panels
	if len(panels) == 0 {
		panels = []Span{{Top: vp.Top, Bottom: vp.Bottom}}
	}

	var cmds []Command
	for _, cl := range clusters {
		guide := guideColor(cl.Style)
		for _, p := range panels {
			cmds = append(cmds, LineCommand{
				X1: cl.PixelX, Y1: p.Top,
				X2: cl.PixelX, Y2: p.Bottom,
				Color:  guide,
				Width:  1,
				Dashed: true,
				Z:      opts.LineZ,
			})
		}
		cmds = append(cmds, TextCommand{
			X:           cl.PixelX,
			Y:           vp.Top + 4,
			Text:        cl.DisplayText,
			Font:        resolvedFont(cl.Style, opts),
			Color:       textColor(cl.Style),
			RotationDeg: opts.RotationDeg,
			HAlign:      AlignRight,
			VAlign:      AlignMiddle,
			Z:           opts.TextZ,
		})
	}
	return cmds
}

// drawHorizontal is shared by the inside and belt modes: measure, resolve
// crowding, pack lanes, place.
func (l *Labeler) drawHorizontal(vp Viewport, clusters []ClusteredLabel, opts LayoutOptions, belt bool) []Command {
	widths := make([]float64, len(clusters))
	var maxH float64
	for i, cl := range clusters {
		w, h := l.cache.Get(cl.DisplayText, resolvedFont(cl.Style, opts), vp.DPI, l.measurer)
		widths[i] = w
		if h > maxH {
			maxH = h
		}
	}
	laneH := maxH + 4
	if maxH == 0 {
		// Nothing measurable yet; assume a line height from the font size.
		laneH = opts.Font.Size + 6
	}

	visible := resolveCrowding(clusters, widths)
	if dropped := len(clusters) - len(visible); dropped > 0 {
		l.logger.Debug("event labels omitted for space", "dropped", dropped, "visible", len(visible))
	}

	lefts := make([]float64, len(visible))
	ws := make([]float64, len(visible))
	for k, i := range visible {
		lefts[k] = placeLabel(clusters[i].PixelX, widths[i], vp.Left, vp.Right)
		ws[k] = widths[i]
	}
	lanes := assignLanes(lefts, ws, opts.Lanes)

	band := Span{Top: vp.Top + 4, Bottom: vp.Top + 4 + float64(opts.Lanes)*laneH}
	if belt {
		if vp.Belt != nil {
			band = *vp.Belt
		} else {
			band = Span{Top: vp.Top - 4 - float64(opts.Lanes)*laneH, Bottom: vp.Top - 4}
		}
	}

	var cmds []Command
	if belt && opts.BeltBaseline {
		cmds = append(cmds, LineCommand{
			X1: vp.Left, Y1: band.Bottom,
			X2: vp.Right, Y2: band.Bottom,
			Color: Color{R: 0.5, G: 0.5, B: 0.5, A: 0.8},
			Width: 1,
			Z:     opts.LineZ,
		})
	}

	for k, i := range visible {
		cl := clusters[i]
		y := band.Top + float64(lanes[k])*laneH
		if opts.Outline {
			cmds = append(cmds, boxCommand(cl.Style, lefts[k], y, ws[k], laneH, opts))
		}
		cmds = append(cmds, TextCommand{
			X:      lefts[k],
			Y:      y,
			Text:   cl.DisplayText,
			Font:   resolvedFont(cl.Style, opts),
			Color:  textColor(cl.Style),
			HAlign: AlignLeft,
			VAlign: AlignTop,
			Z:      opts.TextZ,
		})
	}
	return cmds
}

func boxCommand(s StyleOverrides, x, y, w, h float64, opts LayoutOptions) RectCommand {
	pad := 2.0
	fill := Color{R: 1, G: 1, B: 1, A: 0.75}
	edge := Color{R: 0.3, G: 0.3, B: 0.3, A: 1}
	if s.Box != nil {
		fill = s.Box.Fill
		edge = s.Box.Edge
		if s.Box.Pad > 0 {
			pad = s.Box.Pad
		}
	}
	return RectCommand{
		X: x - pad, Y: y - pad,
		W: w + 2*pad, H: h + 2*pad,
		Fill:    fill,
		Edge:    edge,
		HasEdge: true,
		Z:       opts.TextZ - 0.5,
	}
}

// guideColor is the cluster's resolved color at half alpha, or neutral gray
// when no color resolved.
func guideColor(s StyleOverrides) Color {
	if s.Color != nil {
		c := *s.Color
		c.A *= 0.5
		return c
	}
	return Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}
}

func textColor(s StyleOverrides) Color {
	c := Color{A: 1}
	if s.Color != nil {
		c = *s.Color
	}
	if s.Alpha != nil {
		c.A = *s.Alpha
	}
	return c
}

// resolvedFont merges a cluster's resolved style onto the draw options' base
// font.
func resolvedFont(s StyleOverrides, opts LayoutOptions) FontSpec {
	f := opts.Font
	if s.FontFamily != nil {
		f.Family = *s.FontFamily
	}
	if s.FontSize != nil {
		f.Size = *s.FontSize
	}
	if s.Weight != nil {
		f.Weight = *s.Weight
	}
	if s.Italic != nil {
		f.Italic = *s.Italic
	}
	return f
}
