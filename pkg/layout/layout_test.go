package layout

import (
	"strings"
	"testing"

	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/trace"
)

// visualize renders layout rows as ASCII art: one text line per layout
// depth, '#' across [ts, ts+dur). This is the canonical visual form of a
// layout and doubles as the test oracle.
func visualize(rows []Row) string {
	var lines [][]byte
	for _, r := range rows {
		y := int(r.LayoutDepth)
		for len(lines) <= y {
			lines = append(lines, nil)
		}
		for j := int64(0); j < r.Slice.Dur; j++ {
			x := int(r.Slice.TS + j)
			for len(lines[y]) <= x {
				lines[y] = append(lines[y], ' ')
			}
			lines[y][x] = '#'
		}
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, line := range lines {
		sb.Write(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

type sliceSpec struct {
	ts, dur       int64
	depth         uint32
	track         trace.TrackID
	stackID       int64
	parentStackID int64
}

func buildTable(t *testing.T, specs []sliceSpec) *trace.SliceTable {
	t.Helper()
	tbl := trace.NewSliceTable(nil)
	name := tbl.Pool().Intern("slice")
	for i, s := range specs {
		err := tbl.Insert(trace.Slice{
			ID:            trace.SliceID(i + 1),
			TrackID:       s.track,
			TS:            s.ts,
			Dur:           s.dur,
			Depth:         s.depth,
			Name:          name,
			StackID:       s.stackID,
			ParentStackID: s.parentStackID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func computeVis(t *testing.T, tbl *trace.SliceTable, filter string) string {
	t.Helper()
	set, err := trace.ParseTrackSet(filter)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Compute(tbl, set, nil)
	if err != nil {
		t.Fatal(err)
	}
	return visualize(res.Rows)
}

func TestSingleRow(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 1, dur: 5, depth: 0, track: 1, stackID: 1},
	})

	want := `
 #####
`
	if got := computeVis(t, tbl, "1"); got != want {
		t.Errorf("layout mismatch\ngot:%s\nwant:%s", got, want)
	}
}

func TestMultipleRows(t *testing.T) {
	// Five strictly nested slices: the merged depths equal the input depths
	// unchanged (single group, single band).
	tbl := buildTable(t, []sliceSpec{
		{ts: 1, dur: 5, depth: 0, track: 1, stackID: 1},
		{ts: 1, dur: 4, depth: 1, track: 1, stackID: 2, parentStackID: 1},
		{ts: 1, dur: 3, depth: 2, track: 1, stackID: 3, parentStackID: 2},
		{ts: 1, dur: 2, depth: 3, track: 1, stackID: 4, parentStackID: 3},
		{ts: 1, dur: 1, depth: 4, track: 1, stackID: 5, parentStackID: 4},
	})

	want := `
 #####
 ####
 ###
 ##
 #
`
	if got := computeVis(t, tbl, "1"); got != want {
		t.Errorf("layout mismatch\ngot:%s\nwant:%s", got, want)
	}
}

func TestMultipleTracks(t *testing.T) {
	// The second track's group overlaps the first ([0,4) vs [3,7)), so it
	// cannot reuse band 0 and lands at offset 2 (the height of band 0).
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 0, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
		{ts: 3, dur: 4, depth: 0, track: 2, stackID: 3},
		{ts: 3, dur: 2, depth: 1, track: 2, stackID: 4, parentStackID: 3},
	})

	want := `
####
##
   ####
   ##
`
	if got := computeVis(t, tbl, "1,2"); got != want {
		t.Errorf("layout mismatch\ngot:%s\nwant:%s", got, want)
	}
}

func TestMultipleTracksWithGap(t *testing.T) {
	// The later track-1 group starts at 5, at or after band 0's free time
	// (4), so it reuses band 0 and shares rows with the first track-1 group
	// instead of opening a new band.
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 0, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
		{ts: 3, dur: 4, depth: 0, track: 2, stackID: 3},
		{ts: 3, dur: 2, depth: 1, track: 2, stackID: 4, parentStackID: 3},
		{ts: 5, dur: 4, depth: 0, track: 1, stackID: 5},
		{ts: 5, dur: 2, depth: 1, track: 1, stackID: 6, parentStackID: 5},
	})

	want := `
#### ####
##   ##
   ####
   ##
`
	if got := computeVis(t, tbl, "1,2,3"); got != want {
		t.Errorf("layout mismatch\ngot:%s\nwant:%s", got, want)
	}
}

func TestFilterOutTracks(t *testing.T) {
	// A slice on an excluded track must not appear at all, even though its
	// time range would interact with the included slices.
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 0, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
		{ts: 3, dur: 4, depth: 0, track: 2, stackID: 3},
		{ts: 3, dur: 2, depth: 1, track: 2, stackID: 4, parentStackID: 3},
		{ts: 0, dur: 9, depth: 0, track: 3, stackID: 5},
	})

	want := `
####
##
   ####
   ##
`
	if got := computeVis(t, tbl, "1,2"); got != want {
		t.Errorf("layout mismatch\ngot:%s\nwant:%s", got, want)
	}

	res, err := Compute(tbl, mustTrackSet(t, "1,2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Rows {
		if r.Slice.TrackID == 3 {
			t.Errorf("slice on excluded track 3 present in output")
		}
		if r.FilterTrackIDs != "1,2" {
			t.Errorf("FilterTrackIDs = %q, want %q", r.FilterTrackIDs, "1,2")
		}
	}
}

func TestEmptyFilter(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
	})

	res, err := Compute(tbl, mustTrackSet(t, ""), nil)
	if err != nil {
		t.Fatalf("empty filter must not error, got %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("empty filter produced %d rows, want 0", len(res.Rows))
	}
}

func TestNonMatchingFilter(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
	})

	res, err := Compute(tbl, mustTrackSet(t, "42"), nil)
	if err != nil {
		t.Fatalf("non-matching filter must not error, got %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("non-matching filter produced %d rows, want 0", len(res.Rows))
	}
}

func TestZeroDurationGroup(t *testing.T) {
	// A degenerate group occupies [ts, ts). Band 0's free time equals its
	// start, which is touching, not overlapping, so it reuses band 0 and
	// leaves the band's free time unchanged for the group that follows.
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 4, dur: 0, depth: 0, track: 2, stackID: 2},
		{ts: 4, dur: 3, depth: 0, track: 3, stackID: 3},
	})

	res, err := Compute(tbl, mustTrackSet(t, "1,2,3"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.BandCount != 1 {
		t.Errorf("BandCount = %d, want 1", res.BandCount)
	}
	for _, r := range res.Rows {
		if r.LayoutDepth != 0 {
			t.Errorf("slice %d at depth %d, want 0", r.Slice.ID, r.LayoutDepth)
		}
	}
}

func TestOrphanedParentTreatedAsRoot(t *testing.T) {
	// The child's parent lives on a filtered-out track; the child becomes a
	// root of its own group rather than an error.
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 2, stackID: 1},
		{ts: 1, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
	})

	res, err := Compute(tbl, mustTrackSet(t, "1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if res.GroupCount != 1 {
		t.Errorf("GroupCount = %d, want 1", res.GroupCount)
	}
}

func TestCorruptTraceCycle(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1, parentStackID: 2},
		{ts: 0, dur: 2, depth: 1, track: 1, stackID: 2, parentStackID: 1},
	})

	_, err := Compute(tbl, mustTrackSet(t, "1"), nil)
	if !errors.Is(err, errors.ErrCodeCorruptTrace) {
		t.Errorf("cycle error = %v, want CORRUPT_TRACE", err)
	}
}

func TestCorruptTraceDepthDiscontinuity(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 1, dur: 2, depth: 3, track: 1, stackID: 2, parentStackID: 1},
	})

	_, err := Compute(tbl, mustTrackSet(t, "1"), nil)
	if !errors.Is(err, errors.ErrCodeCorruptTrace) {
		t.Errorf("depth discontinuity error = %v, want CORRUPT_TRACE", err)
	}
}

func TestOrderHints(t *testing.T) {
	tbl := buildTable(t, []sliceSpec{
		{ts: 0, dur: 4, depth: 0, track: 1, stackID: 1},
		{ts: 5, dur: 4, depth: 0, track: 2, stackID: 2},
	})

	res, err := Compute(tbl, mustTrackSet(t, "1,2"), []OrderHint{{Column: "ts", Desc: true}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows[0].Slice.TS != 5 {
		t.Errorf("descending ts hint ignored: first row ts = %d", res.Rows[0].Slice.TS)
	}

	// Hints are advisory: the packing itself must not change.
	plain, err := Compute(tbl, mustTrackSet(t, "1,2"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if plain.BandCount != res.BandCount || plain.TotalHeight != res.TotalHeight {
		t.Error("order hints changed the packing")
	}

	// Unknown hint columns are ignored.
	if _, err := Compute(tbl, mustTrackSet(t, "1,2"), []OrderHint{{Column: "bogus"}}); err != nil {
		t.Errorf("unknown hint column errored: %v", err)
	}
}

func mustTrackSet(t *testing.T, s string) trace.TrackSet {
	t.Helper()
	set, err := trace.ParseTrackSet(s)
	if err != nil {
		t.Fatal(err)
	}
	return set
}
