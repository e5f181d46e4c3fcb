// Package trace provides the slice data model backing layout queries.
//
// A trace is a set of tracks, each an independent timeline of nested, named
// time slices. Slices are stored in an append-only columnar [SliceTable]
// indexed by track and time; slice names are interned in a [StringPool].
// Both structures are consumed read-only by the layout engine.
//
// # Data Model
//
// Each slice occupies the half-open interval [TS, TS+Dur) and carries a
// zero-based nesting depth that is already correct within its own track: a
// root slice has depth 0 and a child has depth = parent depth + 1. The
// parent/child relation is expressed through StackID/ParentStackID
// references into the flat record set, not through in-memory pointers.
package trace

// StringID is a handle into a StringPool.
type StringID uint32

// TrackID identifies a track (an independent timeline).
type TrackID uint32

// SliceID identifies a slice row.
type SliceID uint32

// NoParent is the sentinel ParentStackID marking a root slice.
const NoParent int64 = 0

// Slice is a single named time interval on a track.
// Fields are immutable once inserted into a SliceTable.
type Slice struct {
	ID            SliceID
	TrackID       TrackID
	TS            int64
	Dur           int64
	Depth         uint32
	Name          StringID
	StackID       int64
	ParentStackID int64
}

// End returns the exclusive end timestamp of the slice interval.
func (s Slice) End() int64 {
	return s.TS + s.Dur
}

// IsRoot reports whether the slice has no parent in its call path.
func (s Slice) IsRoot() bool {
	return s.ParentStackID == NoParent
}
