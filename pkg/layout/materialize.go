package layout

import (
	"sort"

	"github.com/traceband/traceband/pkg/trace"
)

// Row is one output row: an input slice carrying its merged vertical
// position and the provenance tag of the query that produced it.
type Row struct {
	Slice trace.Slice

	// LayoutDepth is the slice's band offset plus its original depth.
	LayoutDepth uint32

	// FilterTrackIDs echoes the query's filter string verbatim, letting
	// callers correlate results from repeated calls with different filters.
	FilterTrackIDs string
}

// OrderHint is an advisory output ordering. The computation's determinism
// never depends on hints; they only reorder the materialized rows. Unknown
// columns are ignored.
type OrderHint struct {
	Column string // "ts", "dur", "track_id" or "layout_depth"
	Desc   bool
}

// materialize produces one row per member slice of every group, applying
// the band offset on top of each slice's original depth. The transform is
// pure; without hints, rows keep the filtered input order for stable
// diffing.
func materialize(slices []trace.Slice, groups []*Group, bands []band, filter trace.TrackSet, hints []OrderHint) []Row {
	depths := make([]uint32, len(slices))
	for _, g := range groups {
		offset := bands[g.band].offset
		for _, i := range g.members {
			depths[i] = offset + slices[i].Depth
		}
	}

	rows := make([]Row, len(slices))
	for i, s := range slices {
		rows[i] = Row{Slice: s, LayoutDepth: depths[i], FilterTrackIDs: filter.String()}
	}

	applyOrderHints(rows, hints)
	return rows
}

func applyOrderHints(rows []Row, hints []OrderHint) {
	// Apply in reverse so the first hint is the primary sort key.
	for i := len(hints) - 1; i >= 0; i-- {
		key := columnKey(hints[i].Column)
		if key == nil {
			continue
		}
		desc := hints[i].Desc
		sort.SliceStable(rows, func(a, b int) bool {
			if desc {
				return key(rows[a]) > key(rows[b])
			}
			return key(rows[a]) < key(rows[b])
		})
	}
}

func columnKey(column string) func(Row) int64 {
	switch column {
	case "ts":
		return func(r Row) int64 { return r.Slice.TS }
	case "dur":
		return func(r Row) int64 { return r.Slice.Dur }
	case "track_id":
		return func(r Row) int64 { return int64(r.Slice.TrackID) }
	case "layout_depth":
		return func(r Row) int64 { return int64(r.LayoutDepth) }
	default:
		return nil
	}
}
