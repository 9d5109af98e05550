// Package pipeline provides the chart generation pipeline for GraphyPad.
//
// This package implements the complete normalize → plan → render pipeline
// used by both the CLI and the HTTP server. By centralizing this logic, both
// entry points validate, cache and log the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Normalize: validate the raw request against the dataset into a ChartSpec
//  2. Plan: resolve the spec into ordered draw operations
//  3. Render: draw the plan as PNG and print it as matplotlib code
//
// Validation always completes before any canvas is acquired. The image and
// code of a render are cached together under a key built from the dataset
// content hash and the normalized spec.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, ds, chart.Request{
//	    ChartType: "line",
//	    XAxis:     "time",
//	    YAxisList: `["temp"]`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("chart.png", result.Image, 0o644)
package pipeline

import (
	"time"

	"github.com/matzehuels/graphypad/pkg/chart"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDPI is the raster resolution of rendered charts.
	DefaultDPI = chart.DefaultDPI

	// TTLRender is how long a rendered image and its code stay cached.
	TTLRender = 7 * 24 * time.Hour

	// MaxUploadSize bounds uploaded files in bytes.
	MaxUploadSize = 32 << 20
)

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the normalized chart description.
	Spec *chart.ChartSpec

	// Plan is the resolved list of draw operations.
	Plan *chart.Plan

	// Image is the PNG rendering of Plan.
	Image []byte

	// Code is the matplotlib program that reproduces Image.
	Code string

	// DatasetHash is the content hash of the input dataset.
	DatasetHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Series        int
	ImageBytes    int
	NormalizeTime time.Duration
	PlanTime      time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether image and code came from cache
}

// Artifact is the cached pair of image and code.
type Artifact struct {
	Image []byte `json:"image"`
	Code  string `json:"code"`
}
