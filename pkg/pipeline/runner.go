package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/traceband/traceband/pkg/cache"
	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/observability"
	"github.com/traceband/traceband/pkg/render"
	"github.com/traceband/traceband/pkg/trace"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL bounds how long cached layouts and artifacts stay valid.
	// Zero means DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultTTL
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	// Fail fast on a malformed filter before touching storage.
	filter, err := trace.ParseTrackSet(opts.Filter)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{RenderHits: make(map[string]bool)},
	}

	// Stage 1: Load
	loadStart := time.Now()
	tbl, traceHash, err := r.LoadTrace(ctx, opts.TracePath)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.TraceHash = traceHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.SliceCount = tbl.Len()

	logger.Info("loaded trace",
		"path", opts.TracePath,
		"slices", tbl.Len(),
		"tracks", len(tbl.Tracks()),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layoutKey := r.Keyer.LayoutKey(traceHash, cache.LayoutKeyOpts{
		Filter: filter.String(),
		Hints:  hintStrings(opts.Hints),
	})
	res, layoutHit, err := r.computeLayout(ctx, tbl, filter, opts.Hints, layoutKey)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.GroupCount = res.GroupCount
	result.Stats.BandCount = res.BandCount
	result.Stats.TotalHeight = res.TotalHeight
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"filter", filter.String(),
		"rows", len(res.Rows),
		"groups", res.GroupCount,
		"bands", res.BandCount,
		"height", res.TotalHeight,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		for _, format := range opts.Formats {
			data, hit, err := r.renderFormat(ctx, res, tbl.Pool(), layoutKey, format)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", format, err)
			}
			result.Artifacts[format] = data
			result.CacheInfo.RenderHits[format] = hit
		}
		result.Stats.RenderTime = time.Since(renderStart)

		logger.Info("rendered artifacts",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// LoadTrace reads a trace file into a slice table and returns the table
// together with the content hash of the file bytes. The hash anchors all
// cache keys derived from this trace.
func (r *Runner) LoadTrace(ctx context.Context, path string) (*trace.SliceTable, string, error) {
	observability.Query().OnTraceLoadStart(ctx, path)
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		observability.Query().OnTraceLoadComplete(ctx, path, 0, time.Since(start), err)
		return nil, "", err
	}
	tbl, err := trace.ReadTrace(bytes.NewReader(data))
	if err != nil {
		observability.Query().OnTraceLoadComplete(ctx, path, 0, time.Since(start), err)
		return nil, "", err
	}

	observability.Query().OnTraceLoadComplete(ctx, path, tbl.Len(), time.Since(start), nil)
	return tbl, cache.Hash(data), nil
}

// ComputeLayout computes a layout with the cache in front, returning
// whether the result was served from cache.
func (r *Runner) ComputeLayout(ctx context.Context, tbl *trace.SliceTable, traceHash string, filter trace.TrackSet, hints []layout.OrderHint) (*layout.Result, bool, error) {
	key := r.Keyer.LayoutKey(traceHash, cache.LayoutKeyOpts{
		Filter: filter.String(),
		Hints:  hintStrings(hints),
	})
	return r.computeLayout(ctx, tbl, filter, hints, key)
}

func (r *Runner) computeLayout(ctx context.Context, tbl *trace.SliceTable, filter trace.TrackSet, hints []layout.OrderHint, key string) (*layout.Result, bool, error) {
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if res, err := decodeResult(data, tbl.Pool()); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return res, true, nil
		}
		// Undecodable entry: drop it and recompute.
		_ = r.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Query().OnLayoutStart(ctx, filter.String(), tbl.Len())
	start := time.Now()
	res, err := layout.Compute(tbl, filter, hints)
	observability.Query().OnLayoutComplete(ctx, filter.String(), bandCount(res), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := encodeResult(res, tbl.Pool()); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Debug("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return res, false, nil
}

func (r *Runner) renderFormat(ctx context.Context, res *layout.Result, pool *trace.StringPool, layoutKey, format string) ([]byte, bool, error) {
	key := r.Keyer.RenderKey(layoutKey, cache.RenderKeyOpts{Format: format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	observability.Query().OnRenderStart(ctx, format)
	start := time.Now()
	data, err := renderArtifact(res, pool, format)
	observability.Query().OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Debug("render cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, false, nil
}

func renderArtifact(res *layout.Result, pool *trace.StringPool, format string) ([]byte, error) {
	switch format {
	case render.FormatASCII:
		return []byte(render.Waterfall(res.Rows)), nil
	case render.FormatSVG:
		return render.RenderSVG(res, pool, render.WithNames()), nil
	case render.FormatDOT:
		return []byte(render.ToDOT(res.Rows, pool)), nil
	case render.FormatJSON:
		return render.RenderJSON(res, pool)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func bandCount(res *layout.Result) int {
	if res == nil {
		return 0
	}
	return res.BandCount
}
