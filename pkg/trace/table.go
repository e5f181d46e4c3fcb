package trace

import (
	"sort"

	"github.com/traceband/traceband/pkg/errors"
)

// SliceTable is an append-only columnar store of slice records. Columns are
// parallel arrays indexed by row number; a Slice value is assembled on read.
// The table is written once during trace loading and read-only afterwards,
// so concurrent layout queries need no coordination.
type SliceTable struct {
	pool *StringPool

	ids            []SliceID
	trackIDs       []TrackID
	ts             []int64
	dur            []int64
	depth          []uint32
	names          []StringID
	stackIDs       []int64
	parentStackIDs []int64
}

// NewSliceTable creates an empty table backed by the given string pool.
// If pool is nil, a fresh pool is created.
func NewSliceTable(pool *StringPool) *SliceTable {
	if pool == nil {
		pool = NewStringPool()
	}
	return &SliceTable{pool: pool}
}

// Pool returns the string pool used for slice names.
func (t *SliceTable) Pool() *StringPool {
	return t.pool
}

// Insert appends a slice row. Duration must be non-negative; slices occupy
// the half-open interval [TS, TS+Dur), so Dur == 0 is a legal point slice.
func (t *SliceTable) Insert(s Slice) error {
	if s.Dur < 0 {
		return errors.New(errors.ErrCodeInvalidTrace, "slice %d has negative duration %d", s.ID, s.Dur)
	}
	t.ids = append(t.ids, s.ID)
	t.trackIDs = append(t.trackIDs, s.TrackID)
	t.ts = append(t.ts, s.TS)
	t.dur = append(t.dur, s.Dur)
	t.depth = append(t.depth, s.Depth)
	t.names = append(t.names, s.Name)
	t.stackIDs = append(t.stackIDs, s.StackID)
	t.parentStackIDs = append(t.parentStackIDs, s.ParentStackID)
	return nil
}

// Len returns the number of rows.
func (t *SliceTable) Len() int {
	return len(t.ids)
}

// Row assembles the slice at row i.
func (t *SliceTable) Row(i int) Slice {
	return Slice{
		ID:            t.ids[i],
		TrackID:       t.trackIDs[i],
		TS:            t.ts[i],
		Dur:           t.dur[i],
		Depth:         t.depth[i],
		Name:          t.names[i],
		StackID:       t.stackIDs[i],
		ParentStackID: t.parentStackIDs[i],
	}
}

// Tracks returns the distinct track ids present in the table, ascending.
func (t *SliceTable) Tracks() []TrackID {
	seen := make(map[TrackID]struct{})
	for _, id := range t.trackIDs {
		seen[id] = struct{}{}
	}
	out := make([]TrackID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ByTracks returns the slices belonging to the given track set, ordered
// ascending by start timestamp. The sort is stable, so rows sharing a
// timestamp keep their insertion order. The returned slice is a fresh copy;
// the table itself is never mutated.
func (t *SliceTable) ByTracks(set TrackSet) []Slice {
	var out []Slice
	for i := range t.ids {
		if set.Contains(t.trackIDs[i]) {
			out = append(out, t.Row(i))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}
