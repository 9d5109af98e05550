// Package chart turns chart requests into drawable plans.
//
// # Overview
//
// A chart goes through two steps before anything is drawn:
//
//  1. [Normalize] validates a loosely typed [Request] against a dataset and
//     resolves it into an immutable [ChartSpec] with every default applied.
//  2. [BuildPlan] resolves the spec against the data into a [Plan]: the
//     ordered draw operations with their geometry (bar widths and offsets,
//     histogram bins, violin outlines, axis creation order and spine offsets).
//
// The renderer (package render) and the code emitter (package codegen) both
// walk the same Plan, so the image and the generated program never disagree
// about what was drawn.
//
// # Chart Types
//
//   - line, scatter, bar: one series per Y column against the X column
//   - composite: per-column line/scatter/bar on up to several Y axes
//   - histogram: counts over 20 shared bins, missing values dropped
//   - pie: one value column sliced by the X column
//   - box, violin: one item per Y column, missing values dropped per column
//
// A non-numeric X column puts every series on row slots 0..n-1 labeled with
// the X values. With a numeric X, bars are 80% of the smallest gap between
// X values wide, split between the bar series.
//
// # Axes
//
// Composite charts may assign columns to axis indices 0, 1, 2, ... Axis 0 is
// the left axis; each further index is a right-hand twin sharing X. Index 1
// sits on the plot edge and every later one is moved outward by 15% of the
// plot width. Indices must be contiguous from 0.
//
// # Errors
//
// Normalize returns validation errors (INVALID_* codes). BuildPlan returns
// render errors (RENDER_* codes) naming the column and operation.
package chart
