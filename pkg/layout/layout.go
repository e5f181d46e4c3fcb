// Package layout computes merged 2-D layouts for selected trace tracks.
//
// Given a set of tracks, the engine packs every track's nested slice trees
// ("stack groups") into the minimum number of vertical rows reachable under
// a greedy first-fit policy, never letting two time-overlapping groups share
// a row. The computation is a pure function of its inputs: it holds no
// state between calls, mutates nothing it is given, and repeated queries
// over unchanged storage yield byte-identical output.
//
// The computation runs in three stages:
//
//  1. Extract: partition the filtered slices into stack groups
//     ([ExtractGroups]).
//  2. Allocate: assign each group to a vertical band by first-fit bin
//     packing over time, then resolve band offsets by prefix sum.
//  3. Materialize: emit one output row per slice with its merged depth and
//     a provenance tag echoing the filter.
//
// Cost is linear in the number of filtered slices times the bands scanned
// per group, which is bounded by the degree of time-overlap in the input.
package layout

import "github.com/traceband/traceband/pkg/trace"

// Result is a fully materialized layout. All fields are derived fresh per
// call and never shared across invocations.
type Result struct {
	// Filter is the track set the layout was computed for.
	Filter trace.TrackSet

	// Rows holds one entry per in-filter slice. Slices outside the filter
	// are absent, never present with an empty provenance tag.
	Rows []Row

	// GroupCount and BandCount describe the packing.
	GroupCount int
	BandCount  int

	// TotalHeight is the sum of all band heights: the number of vertical
	// rows the merged layout occupies.
	TotalHeight uint32
}

// Compute lays out every slice of the requested tracks into merged vertical
// rows. An empty or non-matching filter yields an empty result, not an
// error. Corrupt trace data (parent cycles, discontinuous depths) returns
// an error with errors.ErrCodeCorruptTrace and no partial result.
func Compute(tbl *trace.SliceTable, filter trace.TrackSet, hints []OrderHint) (*Result, error) {
	filtered := tbl.ByTracks(filter)

	groups, err := ExtractGroups(filtered)
	if err != nil {
		return nil, err
	}

	bands := allocateBands(groups)

	var total uint32
	for _, b := range bands {
		total += b.height
	}

	return &Result{
		Filter:      filter,
		Rows:        materialize(filtered, groups, bands, filter, hints),
		GroupCount:  len(groups),
		BandCount:   len(bands),
		TotalHeight: total,
	}, nil
}
