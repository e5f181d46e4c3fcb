package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

func testResult(t *testing.T) (*layout.Result, *trace.StringPool) {
	t.Helper()
	tbl := trace.NewSliceTable(nil)
	rows := []trace.Slice{
		{ID: 1, TrackID: 1, TS: 0, Dur: 4, Depth: 0, Name: tbl.Pool().Intern("parent"), StackID: 1},
		{ID: 2, TrackID: 1, TS: 0, Dur: 2, Depth: 1, Name: tbl.Pool().Intern("child"), StackID: 2, ParentStackID: 1},
		{ID: 3, TrackID: 2, TS: 3, Dur: 4, Depth: 0, Name: tbl.Pool().Intern("other"), StackID: 3},
	}
	for _, s := range rows {
		if err := tbl.Insert(s); err != nil {
			t.Fatal(err)
		}
	}

	res, err := layout.Compute(tbl, trace.NewTrackSet(1, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	return res, tbl.Pool()
}

func TestWaterfall(t *testing.T) {
	res, _ := testResult(t)

	want := "####\n##\n   ####\n"
	if got := Waterfall(res.Rows); got != want {
		t.Errorf("Waterfall() = %q, want %q", got, want)
	}
}

func TestWaterfallNegativeTimestamps(t *testing.T) {
	rows := []layout.Row{
		{Slice: trace.Slice{ID: 1, TrackID: 1, TS: -2, Dur: 3, StackID: 1}, LayoutDepth: 0},
		{Slice: trace.Slice{ID: 2, TrackID: 1, TS: 0, Dur: 2, Depth: 1, StackID: 2, ParentStackID: 1}, LayoutDepth: 1},
	}

	// Origin shifts to -2, so the root starts at column 0 and the child
	// at column 2.
	want := "###\n  ##\n"
	if got := Waterfall(rows); got != want {
		t.Errorf("Waterfall() = %q, want %q", got, want)
	}
}

func TestWaterfallEmpty(t *testing.T) {
	if got := Waterfall(nil); got != "" {
		t.Errorf("Waterfall(nil) = %q, want empty", got)
	}
}

func TestRenderSVG(t *testing.T) {
	res, pool := testResult(t)

	svg := string(RenderSVG(res, pool, WithNames()))
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("output does not start with <svg: %.40q", svg)
	}
	if count := strings.Count(svg, `<rect class="slice"`); count != 3 {
		t.Errorf("rect count = %d, want 3", count)
	}
	if !strings.Contains(svg, "parent") {
		t.Error("slice names missing from SVG")
	}

	// Determinism: same result, same bytes.
	if again := string(RenderSVG(res, pool, WithNames())); again != svg {
		t.Error("repeated render differs")
	}
}

func TestRenderSVGEscapesNames(t *testing.T) {
	tbl := trace.NewSliceTable(nil)
	name := tbl.Pool().Intern("a<b&c>")
	if err := tbl.Insert(trace.Slice{ID: 1, TrackID: 1, TS: 0, Dur: 1, Name: name, StackID: 1}); err != nil {
		t.Fatal(err)
	}
	res, err := layout.Compute(tbl, trace.NewTrackSet(1), nil)
	if err != nil {
		t.Fatal(err)
	}

	svg := string(RenderSVG(res, tbl.Pool()))
	if strings.Contains(svg, "a<b&c>") {
		t.Error("unescaped name in SVG output")
	}
	if !strings.Contains(svg, "a&lt;b&amp;c&gt;") {
		t.Error("escaped name missing from SVG output")
	}
}

func TestToDOT(t *testing.T) {
	res, pool := testResult(t)

	dot := ToDOT(res.Rows, pool)
	if !strings.HasPrefix(dot, "digraph stacks {") {
		t.Fatalf("dot output malformed: %.40q", dot)
	}
	if !strings.Contains(dot, `"stack_1" -> "stack_2"`) {
		t.Error("parent/child edge missing from DOT")
	}
	if strings.Contains(dot, `-> "stack_3"`) || strings.Contains(dot, `"stack_3" ->`) {
		t.Error("root-only group should have no edges")
	}
}

func TestRenderJSON(t *testing.T) {
	res, pool := testResult(t)

	data, err := RenderJSON(res, pool)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		FilterTrackIDs string `json:"filter_track_ids"`
		BandCount      int    `json:"band_count"`
		TotalHeight    int    `json:"total_height"`
		Rows           []struct {
			ID          int    `json:"id"`
			Name        string `json:"name"`
			LayoutDepth int    `json:"layout_depth"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	if out.FilterTrackIDs != "1,2" {
		t.Errorf("filter_track_ids = %q, want %q", out.FilterTrackIDs, "1,2")
	}
	if out.BandCount != 2 || out.TotalHeight != 3 {
		t.Errorf("band_count=%d total_height=%d, want 2 and 3", out.BandCount, out.TotalHeight)
	}
	if len(out.Rows) != 3 || out.Rows[2].LayoutDepth != 2 {
		t.Errorf("rows = %+v", out.Rows)
	}
	if out.Rows[0].Name != "parent" {
		t.Errorf("row 0 name = %q, want %q", out.Rows[0].Name, "parent")
	}

	// Byte-identical on repeat.
	again, err := RenderJSON(res, pool)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("repeated RenderJSON differs")
	}
}

func TestIsValidFormat(t *testing.T) {
	for _, f := range Formats {
		if !IsValidFormat(f) {
			t.Errorf("IsValidFormat(%q) = false", f)
		}
	}
	if IsValidFormat("pdf") {
		t.Error("IsValidFormat(pdf) = true, want false")
	}
}
