package label

// TextMeasurer is the primitive used to measure rendered text. Implementations
// wrap a live rendering surface and are expected to be expensive to call.
type TextMeasurer interface {
	MeasureText(text string, font FontSpec) (width, height float64, err error)
}

type metricsKey struct {
	text string
	font FontSpec
	dpi  float64
}

type textSize struct {
	w, h float64
}

// MetricsCache memoizes text measurements keyed by (text, font, dpi). It is
// owned by a single Labeler and must only be used from the thread that owns
// that labeler.
type MetricsCache struct {
	entries map[metricsKey]textSize
}

// NewMetricsCache returns an empty cache.
func NewMetricsCache() *MetricsCache {
	return &MetricsCache{entries: make(map[metricsKey]textSize)}
}

// Get returns the cached size for the given text, or measures it exactly once
// and stores the result. A nil measurer, a measurement error, or a panic in
// the measurement primitive all yield (0, 0) without caching: a label that
// cannot be measured is zero-width, never a failed draw.
func (c *MetricsCache) Get(text string, font FontSpec, dpi float64, m TextMeasurer) (w, h float64) {
	key := metricsKey{text: text, font: font, dpi: dpi}
	if s, ok := c.entries[key]; ok {
		return s.w, s.h
	}
	if m == nil {
		return 0, 0
	}
	w, h, err := measure(m, text, font)
	if err != nil {
		return 0, 0
	}
	c.entries[key] = textSize{w: w, h: h}
	return w, h
}

func measure(m TextMeasurer, text string, font FontSpec) (w, h float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, h = 0, 0
			err = errMeasurePanic
		}
	}()
	return m.MeasureText(text, font)
}

type measureError string

func (e measureError) Error() string { return string(e) }

const errMeasurePanic = measureError("text measurement panicked")

// Clear drops every entry. Callers must invoke it whenever the device DPI
// changes, since a new DPI invalidates every cached width.
func (c *MetricsCache) Clear() {
	c.entries = make(map[metricsKey]textSize)
}

// Len reports the number of cached entries.
func (c *MetricsCache) Len() int {
	return len(c.entries)
}
