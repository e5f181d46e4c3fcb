// Package pkg provides the core libraries for traceband slice layout queries.
//
// # Overview
//
// Traceband answers one question about a trace: given a set of tracks whose
// slices overlap in time, how can their call stacks be drawn in a single
// shared column without collisions? The pkg directory is organized along
// the query pipeline:
//
//  1. [trace] - Slice data model (columnar table, string pool, track filters)
//  2. [layout] - Stack-group extraction and merged band packing
//  3. [engine] - Dynamic-table adapter exposing layouts as query results
//  4. [render] - Output sinks (ascii waterfall, SVG, DOT, JSON)
//  5. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow through traceband:
//
//	Trace file (slices with stack references)
//	         ↓
//	    [trace] package (columnar table + track filter)
//	         ↓
//	    [layout] package (stack groups → merged bands → rows)
//	         ↓
//	    [render] package (waterfall / SVG / DOT / JSON)
//
// # Quick Start
//
// Compute and print a layout:
//
//	import (
//	    "fmt"
//
//	    "github.com/traceband/traceband/pkg/layout"
//	    "github.com/traceband/traceband/pkg/render"
//	    "github.com/traceband/traceband/pkg/trace"
//	)
//
//	tbl, _ := trace.ReadTraceFile("boot.json")
//	filter, _ := trace.ParseTrackSet("1,2")
//	res, _ := layout.Compute(tbl, filter, nil)
//	fmt.Print(render.Waterfall(res.Rows))
//
// # Main Packages
//
// [trace] - Append-only columnar slice table with interned names. Slices
// reference their call path through stack ids rather than pointers, so the
// table round-trips through JSON without fixups.
//
// [layout] - The layout engine. Extracts connected stack groups from the
// filtered slices, packs them greedily into reusable bands, and assigns
// every slice a merged depth. Deterministic: equal inputs produce
// byte-identical output.
//
// [engine] - Narrow adapter binding layout computation to a dynamic-table
// protocol: registered tables are computed per query from constraints.
//
// [pipeline] - Complete query pipeline used by CLI and API. Puts the cache
// in exactly one place; keys derive from the trace content hash.
//
// [cache] - Content-addressed result cache with file, redis, and null
// backends.
//
// [store] - Trace catalog for serve mode (memory and mongo backends).
//
// [render] - Output sinks. The ascii waterfall doubles as the oracle format
// in layout tests.
//
// [observability] - Optional hooks for query and cache instrumentation.
//
// [trace]: https://pkg.go.dev/github.com/traceband/traceband/pkg/trace
// [layout]: https://pkg.go.dev/github.com/traceband/traceband/pkg/layout
// [engine]: https://pkg.go.dev/github.com/traceband/traceband/pkg/engine
// [render]: https://pkg.go.dev/github.com/traceband/traceband/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/traceband/traceband/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/traceband/traceband/pkg/cache
// [store]: https://pkg.go.dev/github.com/traceband/traceband/pkg/store
// [observability]: https://pkg.go.dev/github.com/traceband/traceband/pkg/observability
package pkg
