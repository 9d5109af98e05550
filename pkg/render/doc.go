// Package render draws chart plans as PNG images.
//
// # Overview
//
// [Renderer.Render] takes a [chart.Plan] and draws it with gonum/plot onto a
// raster canvas of the plan's figure size and DPI. The same plan always
// yields the same bytes.
//
//	r := render.New()
//	png, err := r.Render(plan)
//
// [Renderer.RenderSpec] builds the plan first:
//
//	png, err := r.RenderSpec(spec, ds)
//
// # Resources
//
// Every call acquires its own canvas and releases it on return, whether the
// call succeeds, fails or panics inside the drawing library. A panic becomes
// a RENDER_CANVAS error and no partial image is returned. Fonts and colors
// are set on each plot, never through package globals, so a single Renderer
// may serve concurrent requests.
//
// # Drawing
//
// Grouped bars, histogram bars, pie wedges, violins, grid lines and inward
// tick marks are custom plotters working in data units. Box plots use the
// gonum box plotter with a data-unit width. Twin Y axes draw their series
// through a copy of the plot whose Y axis is replaced, then add a spine on
// the right, moved outward by the axis offset.
//
// # Sparklines
//
// [Sparkline] renders a small trend line for column previews using go-chart.
//
// [chart.Plan]: github.com/matzehuels/graphypad/pkg/chart.Plan
package render
