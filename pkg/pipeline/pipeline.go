// Package pipeline provides the core layout query pipeline for traceband.
//
// This package implements the complete load → layout → render pipeline used
// by the CLI and the HTTP API. Centralizing this logic keeps behavior
// consistent across entry points and puts the cache in exactly one place.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the trace file into a columnar slice table
//  2. Layout: pack the selected tracks' stack groups into merged bands
//  3. Render: produce output artifacts (ascii, svg, dot, json)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TracePath: "boot.json",
//	    Filter:    "1,2",
//	    Formats:   []string{"ascii"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts["ascii"]))
//
// Layout results and rendered artifacts are cached under keys derived from
// the trace content hash, so editing a trace file naturally invalidates its
// entries. Because the layout computation is deterministic and pure, a
// cached result is always byte-identical to a fresh one.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/render"
)

// DefaultTTL is how long cached layouts and artifacts stay valid. The cache
// is a pure memo (keys include the trace content hash), so the TTL only
// bounds disk usage, not correctness.
const DefaultTTL = 14 * 24 * time.Hour

// Options configures one pipeline execution.
type Options struct {
	// TracePath is the trace file to load.
	TracePath string

	// Filter is the comma-joined list of requested track ids, passed
	// verbatim into the layout computation and echoed in every output row.
	Filter string

	// Hints optionally reorder output rows. Advisory only; they never
	// affect the packing.
	Hints []layout.OrderHint

	// Formats selects the render stage outputs. Empty means no rendering.
	Formats []string

	// Logger overrides the runner's logger for this execution.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.TracePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "trace path is required")
	}
	if err := errors.ValidateTracePath(o.TracePath); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if !render.IsValidFormat(f) {
			return errors.New(errors.ErrCodeInvalidFormat,
				"unknown format %q (supported: %v)", f, render.Formats)
		}
	}
	return nil
}

// hintStrings serializes hints for cache keys: "column" or "-column".
func hintStrings(hints []layout.OrderHint) []string {
	if len(hints) == 0 {
		return nil
	}
	out := make([]string, len(hints))
	for i, h := range hints {
		if h.Desc {
			out[i] = "-" + h.Column
		} else {
			out[i] = h.Column
		}
	}
	return out
}

// Stats captures timing and size information for one execution.
type Stats struct {
	SliceCount  int
	GroupCount  int
	BandCount   int
	TotalHeight uint32

	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit  bool
	RenderHits map[string]bool
}

// Result is the output of a complete pipeline execution.
type Result struct {
	// Layout is the materialized layout result.
	Layout *layout.Result

	// TraceHash is the content hash of the loaded trace file, usable as a
	// stable identifier for follow-up render calls.
	TraceHash string

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}
