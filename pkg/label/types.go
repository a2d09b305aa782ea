package label

// Mode selects which of the three layout algorithms renders a draw call.
type Mode int

const (
	// ModeVertical draws rotated labels with full-height guide lines.
	ModeVertical Mode = iota
	// ModeHorizontalInside packs inline labels into lanes near the top of the plot.
	ModeHorizontalInside
	// ModeHorizontalBelt packs labels into a dedicated strip above the plot.
	ModeHorizontalBelt
)

// StylePolicy selects how a cluster resolves conflicting member styles.
type StylePolicy int

const (
	// PolicyFirst uses the first member's style verbatim.
	PolicyFirst StylePolicy = iota
	// PolicyMostCommon takes the most frequent value of each style attribute.
	PolicyMostCommon
	// PolicyPriority uses the style of the highest-priority member.
	PolicyPriority
	// PolicyBlendColor uses the first member's style with the averaged member color.
	PolicyBlendColor
)

// FontWeight is the rendered weight of a label font.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightSemiBold
	WeightBold
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// FontSpec describes a label font. It is comparable and usable as a cache key.
type FontSpec struct {
	Family string     `json:"family"`
	Size   float64    `json:"size"`
	Weight FontWeight `json:"weight"`
	Italic bool       `json:"italic"`
}

// BoxStyle describes an optional background box behind a label.
type BoxStyle struct {
	Fill Color   `json:"fill"`
	Edge Color   `json:"edge"`
	Pad  float64 `json:"pad"`
}

// StyleOverrides is the set of per-event style fields an annotation may carry.
// Every field is optional; nil means "no override". This replaces the
// free-form metadata bag so that policy resolution can enumerate attributes
// exhaustively.
type StyleOverrides struct {
	FontFamily *string     `json:"font_family,omitempty"`
	FontSize   *float64    `json:"font_size,omitempty"`
	Weight     *FontWeight `json:"weight,omitempty"`
	Italic     *bool       `json:"italic,omitempty"`
	Color      *Color      `json:"color,omitempty"`
	Alpha      *float64    `json:"alpha,omitempty"`
	Rotation   *float64    `json:"rotation,omitempty"`
	Align      *string     `json:"align,omitempty"`
	Box        *BoxStyle   `json:"box,omitempty"`

	// Hidden excludes the event's text from its cluster's composed label.
	Hidden bool `json:"hidden,omitempty"`
	// TextOverride replaces the event's text when non-empty.
	TextOverride string `json:"text_override,omitempty"`
}

// EventEntry is one timestamped annotation to be laid out. Entries are never
// mutated by the labeler; clusters hold copies of their members.
type EventEntry struct {
	Time     float64        `json:"time"`
	Text     string         `json:"text"`
	Style    StyleOverrides `json:"style,omitempty"`
	Priority int            `json:"priority,omitempty"`
	Category string         `json:"category,omitempty"`
	Pinned   bool           `json:"pinned,omitempty"`
	// Index is a stable display-order number, independent of time. -1 when unset.
	Index int `json:"index"`
}

// ClusteredLabel is a transient grouping of pixel-adjacent events, rebuilt
// from scratch on every draw. Member order is the stable pixel-sort order of
// construction; style tie-breaks depend on it.
type ClusteredLabel struct {
	DataX       float64
	PixelX      float64
	Members     []EventEntry
	DisplayText string
	Style       StyleOverrides
	Pinned      bool
	MaxPriority int
	Category    string
}

// Span is a vertical pixel extent, top above bottom in screen coordinates
// (y grows downward).
type Span struct {
	Top    float64
	Bottom float64
}

// Viewport describes the host plot area for one draw call.
type Viewport struct {
	// TransformX maps data-space times to pixel x positions in one batch call.
	TransformX func(times []float64) []float64
	// Left, Right, Top, Bottom bound the main plotting area in pixels.
	Left, Right, Top, Bottom float64
	// Panels are the vertical extents of stacked axes sharing the time scale.
	// Empty means a single panel spanning Top..Bottom.
	Panels []Span
	// Belt is the strip used by ModeHorizontalBelt. Nil means the labeler
	// derives a strip immediately above Top.
	Belt *Span
	// DPI of the target surface. A change between draws invalidates the
	// text-metrics cache.
	DPI float64
}

// LayoutOptions is the per-draw configuration. The zero value plus
// withDefaults yields the default vertical layout.
type LayoutOptions struct {
	Mode                Mode
	MinGapPx            float64 // minimum pixel separation between clusters, default 24
	MaxLabelsPerCluster int     // 0 selects compact counting
	CompactCounts       bool
	Policy              StylePolicy
	Lanes               int     // horizontal modes, default 3
	RotationDeg         float64 // vertical mode label rotation, default 90
	LineZ               float64
	TextZ               float64
	Outline             bool // draw background boxes behind horizontal labels
	NumberingOnly       bool // show stable indices instead of text
	Font                FontSpec
	Separator           string // default " | "
	BeltBaseline        bool
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.MinGapPx <= 0 {
		o.MinGapPx = 24
	}
	if o.Lanes <= 0 {
		o.Lanes = 3
	}
	if o.RotationDeg == 0 {
		o.RotationDeg = 90
	}
	if o.Font.Size <= 0 {
		o.Font.Size = 10
	}
	if o.Separator == "" {
		o.Separator = " | "
	}
	if o.TextZ == 0 {
		o.TextZ = 2
	}
	if o.LineZ == 0 {
		o.LineZ = 1
	}
	return o
}

// Horizontal and vertical text anchors for draw commands.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Command is one drawing instruction emitted by the labeler. The host canvas
// executes commands in ascending Z order.
type Command interface {
	ZOrder() float64
}

// LineCommand draws a straight line segment.
type LineCommand struct {
	X1, Y1, X2, Y2 float64
	Color          Color
	Width          float64
	Dashed         bool
	Z              float64
}

func (c LineCommand) ZOrder() float64 { return c.Z }

// TextCommand draws a single text run.
type TextCommand struct {
	X, Y        float64
	Text        string
	Font        FontSpec
	Color       Color
	RotationDeg float64
	HAlign      HAlign
	VAlign      VAlign
	Z           float64
}

func (c TextCommand) ZOrder() float64 { return c.Z }

// RectCommand draws a filled, optionally stroked rectangle.
type RectCommand struct {
	X, Y, W, H float64
	Fill       Color
	Edge       Color
	HasEdge    bool
	Z          float64
}

func (c RectCommand) ZOrder() float64 { return c.Z }
