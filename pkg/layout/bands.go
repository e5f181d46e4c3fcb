package layout

import "sort"

// band is a vertical packing lane. Its position in the band list is its
// creation index, which fixes its relative vertical order forever. FreeTime
// and Height mutate only during one allocation pass.
type band struct {
	freeTime int64  // end of the most recently assigned group
	height   uint32 // max height of any assigned group
	offset   uint32 // resolved after all assignments
}

// allocateBands assigns each group to a band and resolves band offsets.
//
// Groups are processed ascending by Start, ties broken by ascending root
// stack id. First-fit is deliberate: scanning bands in creation order and
// taking the first whose free time is at or before the group's start yields
// a stable, easily reproduced packing and favors reusing earlier, shallower
// bands over opening new ones. Intervals are half-open, so a band whose free
// time equals the group's start is touching, not overlapping, and is legal
// to reuse. A zero-duration group occupies [ts, ts) and always fits the
// first eligible band.
//
// Offsets are resolved in a second pass as the prefix sum of the heights of
// all earlier-created bands. The two passes are required because a band's
// final height is only known once every group has been assigned, yet each
// offset depends on the heights of every band above it.
func allocateBands(groups []*Group) []band {
	sorted := make([]*Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].RootStackID < sorted[j].RootStackID
	})

	var bands []band
	for _, g := range sorted {
		assigned := -1
		for i := range bands {
			if bands[i].freeTime <= g.Start {
				assigned = i
				break
			}
		}
		if assigned == -1 {
			bands = append(bands, band{})
			assigned = len(bands) - 1
		}

		bands[assigned].freeTime = g.End
		if g.Height > bands[assigned].height {
			bands[assigned].height = g.Height
		}
		g.band = assigned
	}

	var offset uint32
	for i := range bands {
		bands[i].offset = offset
		offset += bands[i].height
	}
	return bands
}
