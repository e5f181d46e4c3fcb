package trace

import (
	"slices"
	"strconv"
	"strings"

	"github.com/traceband/traceband/pkg/errors"
)

// TrackSet is the set of tracks selected by one layout query. It keeps the
// caller-supplied filter string verbatim so results can echo it as a
// provenance tag, alongside the parsed, order-insensitive id set.
type TrackSet struct {
	raw string
	ids map[TrackID]struct{}
}

// ParseTrackSet parses a comma-joined list of decimal track ids, e.g. "1,2".
// The empty string parses to the empty set. A non-numeric token is a request
// error carrying errors.ErrCodeInvalidFilter; no partial set is returned.
func ParseTrackSet(s string) (TrackSet, error) {
	set := TrackSet{raw: s, ids: make(map[TrackID]struct{})}
	if s == "" {
		return set, nil
	}
	for _, tok := range strings.Split(s, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
		if err != nil {
			return TrackSet{}, errors.New(errors.ErrCodeInvalidFilter, "invalid track id: %q", tok)
		}
		set.ids[TrackID(id)] = struct{}{}
	}
	return set, nil
}

// NewTrackSet builds a set from explicit ids. The canonical string form is
// the ascending comma-joined list.
func NewTrackSet(ids ...TrackID) TrackSet {
	set := TrackSet{ids: make(map[TrackID]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	sorted := set.IDs()
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	set.raw = strings.Join(parts, ",")
	return set
}

// Contains reports whether id is in the set.
func (ts TrackSet) Contains(id TrackID) bool {
	_, ok := ts.ids[id]
	return ok
}

// Empty reports whether the set selects no tracks.
func (ts TrackSet) Empty() bool {
	return len(ts.ids) == 0
}

// Size returns the number of tracks in the set.
func (ts TrackSet) Size() int {
	return len(ts.ids)
}

// IDs returns the track ids in ascending order.
func (ts TrackSet) IDs() []TrackID {
	out := make([]TrackID, 0, len(ts.ids))
	for id := range ts.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// String returns the filter string exactly as supplied by the caller.
// Every output row of a layout query echoes this value.
func (ts TrackSet) String() string {
	return ts.raw
}
