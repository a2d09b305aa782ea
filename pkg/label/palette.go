package label

// categoryPalette assigns a consistent color per event category. Unrecognized
// categories get no color override.
var categoryPalette = map[string]Color{
	"stimulus":     {R: 0.122, G: 0.467, B: 0.706, A: 1}, // blue
	"response":     {R: 0.173, G: 0.627, B: 0.173, A: 1}, // green
	"drug":         {R: 0.839, G: 0.153, B: 0.157, A: 1}, // red
	"baseline":     {R: 0.498, G: 0.498, B: 0.498, A: 1}, // gray
	"intervention": {R: 0.580, G: 0.404, B: 0.741, A: 1}, // purple
	"measurement":  {R: 0.090, G: 0.745, B: 0.812, A: 1}, // cyan
	"event":        {R: 0.549, G: 0.337, B: 0.294, A: 1}, // brown
	"marker":       {R: 0.890, G: 0.467, B: 0.761, A: 1}, // pink
	"warning":      {R: 1.000, G: 0.498, B: 0.055, A: 1}, // orange
	"error":        {R: 0.698, G: 0.133, B: 0.133, A: 1}, // crimson
}

// CategoryColor reports the palette color for a category, if it has one.
func CategoryColor(category string) (Color, bool) {
	c, ok := categoryPalette[category]
	return c, ok
}
