// Command vasoplot renders a publication figure from trace and event files.
//
// A figure document (HCL recipe or JSON spec) describes the page, axes,
// traces, events, and annotations; trace data comes from a CSV. With no
// document, the built-in defaults render the inner diameter trace.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/vr-oj/VasoAnalyzer-sub000/pkg/figure"
	"github.com/vr-oj/VasoAnalyzer-sub000/pkg/trace"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var (
		tracesPath string
		eventsPath string
		recipePath string
		stylePath  string
		outPath    string
		format     string
		dpi        float64
	)

	flag.StringVar(&tracesPath, "traces", "", "Path to trace CSV (required)")
	flag.StringVar(&eventsPath, "events", "", "Path to event CSV")
	flag.StringVar(&recipePath, "recipe", "", "Path to figure recipe (.hcl) or spec (.json)")
	flag.StringVar(&stylePath, "style", "", "Path to YAML style overlay")
	flag.StringVar(&outPath, "o", "figure.png", "Output file")
	flag.StringVar(&format, "format", "", "Export format (png, tiff, jpeg, pdf, svg); inferred from -o when empty")
	flag.Float64Var(&dpi, "dpi", 0, "Raster export DPI (0 uses the recipe's)")
	flag.Parse()

	if tracesPath == "" {
		logger.Error("traces parameter is required")
		flag.Usage()
		os.Exit(1)
	}

	store, err := trace.LoadCSV(tracesPath)
	if err != nil {
		logger.Error("Failed to load traces", "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded traces", "path", tracesPath, "series", store.Keys())

	spec := figure.DefaultFigureSpec()
	if recipePath != "" {
		spec, err = figure.LoadRecipe(recipePath)
		if err != nil {
			logger.Error("Failed to load recipe", "error", err)
			os.Exit(1)
		}
	}

	if eventsPath != "" {
		entries, err := trace.LoadEventsCSV(eventsPath)
		if err != nil {
			logger.Error("Failed to load events", "error", err)
			os.Exit(1)
		}
		for _, e := range entries {
			spec.Events = append(spec.Events, figure.EventSpec{
				Visible: true,
				Time:    e.Time,
				Label:   e.Text,
				Width:   1,
				Style:   "dash",
			})
		}
		logger.Info("Loaded events", "path", eventsPath, "count", len(entries))
	}

	style := figure.DefaultStyle()
	if stylePath != "" {
		overlay, err := figure.LoadStyleOverlay(stylePath)
		if err != nil {
			logger.Error("Failed to load style", "error", err)
			os.Exit(1)
		}
		style = style.Merge(overlay)
	}

	renderer := figure.NewRenderer(store, style, logger)
	fig, err := renderer.Build(&spec)
	if err != nil {
		logger.Error("Failed to build figure", "error", err)
		os.Exit(1)
	}
	logger.Info("Composed figure",
		"width_in", fig.WidthIn, "height_in", fig.HeightIn, "sizing", spec.Page.Sizing)

	if err := renderer.Export(fig, outPath, format, dpi); err != nil {
		logger.Error("Failed to export figure", "error", err)
		os.Exit(1)
	}
	logger.Info("Wrote figure", "path", outPath)
}
