// Package pkg provides the core libraries for GraphyPad chart generation.
//
// # Overview
//
// GraphyPad turns a table (CSV, TXT or XLSX) plus a chart request into a PNG
// image and a matplotlib program that draws the same figure. The pkg
// directory is organized into these areas:
//
//  1. [dataset] - Tables, ingestion, pagination and derived columns
//  2. [chart] - Request validation and draw planning
//  3. [render] - PNG rendering of plans and column sparklines
//  4. [codegen] - Python emission of plans
//  5. [pipeline] - Orchestration (normalize → plan → render) with caching
//  6. [cache], [upload] - Storage backends and the upload store
//  7. [io], [errors], [observability], [buildinfo] - Support packages
//
// # Architecture
//
// The typical data flow through GraphyPad:
//
//	CSV / XLSX upload
//	         ↓
//	    [dataset] package (parse cells, detect encoding)
//	         ↓
//	    [chart] package (Normalize → ChartSpec, BuildPlan → Plan)
//	         ↓
//	    [render] + [codegen] packages (PNG bytes, Python source)
//
// # Quick Start
//
//	ds, _ := dataset.Parse(data, "weather.csv")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, ds, chart.Request{
//	    ChartType: "line",
//	    XAxis:     "time",
//	    YAxisList: `["temp"]`,
//	})
package pkg
