package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphypad/pkg/cache"
	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/codegen"
	"github.com/matzehuels/graphypad/pkg/dataset"
	dsio "github.com/matzehuels/graphypad/pkg/io"
	"github.com/matzehuels/graphypad/pkg/observability"
	"github.com/matzehuels/graphypad/pkg/render"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDPI sets the raster resolution of rendered images.
func WithDPI(dpi float64) Option {
	return func(r *Runner) { r.dpi = dpi }
}

// WithTTL sets how long rendered artifacts stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(r *Runner) { r.ttl = ttl }
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	renderer *render.Renderer
	dpi      float64
	ttl      time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...Option) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		dpi:    DefaultDPI,
		ttl:    TTLRender,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.renderer = render.New(render.WithDPI(r.dpi))
	return r
}

// Execute runs the complete normalize → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, ds *dataset.Dataset, req chart.Request) (*Result, error) {
	start := time.Now()
	spec, err := chart.Normalize(req, ds)
	elapsed := time.Since(start)
	observability.Pipeline().OnNormalize(ctx, req.ChartType, elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	result, err := r.ExecuteSpec(ctx, ds, spec)
	if err != nil {
		return nil, err
	}
	result.Stats.NormalizeTime = elapsed
	return result, nil
}

// ExecuteSpec plans and renders an already normalized spec.
func (r *Runner) ExecuteSpec(ctx context.Context, ds *dataset.Dataset, spec *chart.ChartSpec) (*Result, error) {
	result := &Result{Spec: spec}

	planStart := time.Now()
	plan, err := chart.BuildPlan(spec, ds, chart.WithDPI(r.dpi))
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, string(spec.Type), 0, time.Since(planStart), err)
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Series = plan.SeriesCount()

	result.DatasetHash, err = DatasetHash(ds)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	art, hit, err := r.RenderWithCacheInfo(ctx, result.DatasetHash, spec, plan)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Image = art.Image
	result.Code = art.Code
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.ImageBytes = len(art.Image)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered chart",
		"type", spec.Type,
		"series", result.Stats.Series,
		"bytes", result.Stats.ImageBytes,
		"cached", hit,
		"duration", result.Stats.PlanTime+result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo returns the image and code for plan, from the cache
// when possible, and reports whether it was a hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, datasetHash string, spec *chart.ChartSpec, plan *chart.Plan) (Artifact, bool, error) {
	hooks := observability.Cache()
	cacheKey := r.Keyer.RenderKey(datasetHash, spec, cache.RenderKeyOpts{DPI: r.dpi})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached Artifact
		if err := json.Unmarshal(data, &cached); err == nil && len(cached.Image) > 0 {
			hooks.OnCacheHit(ctx, "render")
			return cached, true, nil
		}
		// If deserialization fails, fall through to re-render
	} else if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	hooks.OnCacheMiss(ctx, "render")

	observability.Pipeline().OnRenderStart(ctx, string(plan.Type), plan.SeriesCount())
	start := time.Now()
	img, err := r.renderer.Render(plan)
	observability.Pipeline().OnRenderComplete(ctx, string(plan.Type), len(img), time.Since(start), err)
	if err != nil {
		return Artifact{}, false, err
	}
	art := Artifact{Image: img, Code: codegen.Python(plan)}

	if data, err := json.Marshal(art); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "render", len(data))
		}
	}
	return art, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// DatasetHash returns the content hash of ds, covering names, cells, source
// metadata and derivations.
func DatasetHash(ds *dataset.Dataset) (string, error) {
	data, err := dsio.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("hash dataset: %w", err)
	}
	return cache.Hash(data), nil
}
