package layout

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/traceband/traceband/pkg/trace"
)

// randomTable builds a well-formed random trace: every track is a sequence
// of non-overlapping top-level slices, each with a chain of strictly nested
// children. The seed is fixed per test, so failures are reproducible.
func randomTable(t *testing.T, rng *rand.Rand, tracks, rootsPerTrack int) *trace.SliceTable {
	t.Helper()
	tbl := trace.NewSliceTable(nil)
	name := tbl.Pool().Intern("work")

	var nextSlice trace.SliceID
	var nextStack int64
	for track := 1; track <= tracks; track++ {
		ts := int64(rng.Intn(5))
		for r := 0; r < rootsPerTrack; r++ {
			dur := int64(2 + rng.Intn(10))
			depth := 1 + rng.Intn(4)

			parent := trace.NoParent
			for d := 0; d < depth; d++ {
				nextSlice++
				nextStack++
				childDur := dur - int64(d)
				if childDur < 1 {
					childDur = 1
				}
				err := tbl.Insert(trace.Slice{
					ID:            nextSlice,
					TrackID:       trace.TrackID(track),
					TS:            ts,
					Dur:           childDur,
					Depth:         uint32(d),
					Name:          name,
					StackID:       nextStack,
					ParentStackID: parent,
				})
				if err != nil {
					t.Fatal(err)
				}
				parent = nextStack
			}
			ts += dur + int64(rng.Intn(4))
		}
	}
	return tbl
}

func allTracks(tbl *trace.SliceTable) trace.TrackSet {
	return trace.NewTrackSet(tbl.Tracks()...)
}

func TestBandOffsetsArePrefixSums(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		tbl := randomTable(t, rng, 1+rng.Intn(6), 1+rng.Intn(5))
		groups, err := ExtractGroups(tbl.ByTracks(allTracks(tbl)))
		if err != nil {
			t.Fatal(err)
		}
		bands := allocateBands(groups)

		var sum uint32
		for i, b := range bands {
			if b.offset != sum {
				t.Fatalf("band %d offset = %d, want prefix sum %d", i, b.offset, sum)
			}
			if b.height == 0 {
				t.Fatalf("band %d has zero height", i)
			}
			sum += b.height
		}
		if len(bands) > 0 && bands[0].offset != 0 {
			t.Fatalf("first band offset = %d, want 0", bands[0].offset)
		}
	}
}

func TestOverlappingGroupsGetDisjointBands(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		tbl := randomTable(t, rng, 2+rng.Intn(6), 1+rng.Intn(5))
		groups, err := ExtractGroups(tbl.ByTracks(allTracks(tbl)))
		if err != nil {
			t.Fatal(err)
		}
		bands := allocateBands(groups)

		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				g1, g2 := groups[i], groups[j]
				if g1.Start >= g2.End || g2.Start >= g1.End {
					continue // time-disjoint
				}
				lo1, hi1 := bands[g1.band].offset, bands[g1.band].offset+bands[g1.band].height
				lo2, hi2 := bands[g2.band].offset, bands[g2.band].offset+bands[g2.band].height
				if lo1 < hi2 && lo2 < hi1 {
					t.Fatalf("time-overlapping groups %d and %d share rows: [%d,%d) vs [%d,%d)",
						g1.RootStackID, g2.RootStackID, lo1, hi1, lo2, hi2)
				}
			}
		}
	}
}

func TestLayoutDepthBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for trial := 0; trial < 20; trial++ {
		tbl := randomTable(t, rng, 1+rng.Intn(6), 1+rng.Intn(5))
		filter := allTracks(tbl)

		res, err := Compute(tbl, filter, nil)
		if err != nil {
			t.Fatal(err)
		}

		// layout_depth never goes below the slice's own depth.
		for _, r := range res.Rows {
			if r.LayoutDepth < r.Slice.Depth {
				t.Fatalf("slice %d layout depth %d below original depth %d",
					r.Slice.ID, r.LayoutDepth, r.Slice.Depth)
			}
			if int(r.LayoutDepth) >= int(res.TotalHeight) {
				t.Fatalf("slice %d layout depth %d outside total height %d",
					r.Slice.ID, r.LayoutDepth, res.TotalHeight)
			}
		}

		// The minimum layout depth within a group equals its band offset.
		groups, err := ExtractGroups(tbl.ByTracks(filter))
		if err != nil {
			t.Fatal(err)
		}
		bands := allocateBands(groups)
		for _, g := range groups {
			offset := bands[g.band].offset
			min := res.TotalHeight
			for _, idx := range g.members {
				if d := res.Rows[idx].LayoutDepth; d < min {
					min = d
				}
			}
			if min != offset {
				t.Fatalf("group %d min layout depth %d, want band offset %d", g.RootStackID, min, offset)
			}
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	tbl := randomTable(t, rng, 5, 4)
	filter := allTracks(tbl)

	first, err := Compute(tbl, filter, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute(tbl, filter, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated computation differs from first")
	}
	if visualize(first.Rows) != visualize(second.Rows) {
		t.Error("repeated computation renders differently")
	}
}

func TestFilterMonotonicity(t *testing.T) {
	// Removing a track from the filter must not push any remaining slice
	// deeper. Checked on the reference overlap scenario.
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 0, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
		{ts: 3, dur: 4, depth: 0, track: 2, stackID: 3},
		{ts: 3, dur: 2, depth: 1, track: 2, stackID: 4, parentStackID: 3},
		{ts: 5, dur: 4, depth: 0, track: 1, stackID: 5},
		{ts: 5, dur: 2, depth: 1, track: 1, stackID: 6, parentStackID: 5},
	})

	full, err := Compute(tbl, mustTrackSet(t, "1,2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	reduced, err := Compute(tbl, mustTrackSet(t, "2"), nil)
	if err != nil {
		t.Fatal(err)
	}

	fullDepth := make(map[trace.SliceID]uint32)
	for _, r := range full.Rows {
		fullDepth[r.Slice.ID] = r.LayoutDepth
	}
	for _, r := range reduced.Rows {
		if r.LayoutDepth > fullDepth[r.Slice.ID] {
			t.Errorf("slice %d deepened from %d to %d after narrowing the filter",
				r.Slice.ID, fullDepth[r.Slice.ID], r.LayoutDepth)
		}
	}
}
