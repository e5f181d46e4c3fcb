package engine

import (
	"context"
	"testing"

	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

func testTable(t *testing.T) *trace.SliceTable {
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
	return tbl
}

func TestSliceLayoutProvider(t *testing.T) {
	p := NewSliceLayoutProvider(testTable(t))

	got, err := p.ComputeTable(context.Background(),
		[]Constraint{{Column: FilterColumn, Value: "1,2"}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", got.RowCount())
	}
	if got.ColumnIndex("depth") != -1 {
		t.Error("output schema still contains the per-track depth column")
	}
	if got.Get(0, "name") != "parent" {
		t.Errorf("name = %v, want %q", got.Get(0, "name"), "parent")
	}
	if got.Get(0, FilterColumn) != "1,2" {
		t.Errorf("filter tag = %v, want %q", got.Get(0, FilterColumn), "1,2")
	}

	// Track 2 overlaps track 1 and lands below its band (height 2).
	if depth := got.Get(2, "layout_depth"); depth != int64(2) {
		t.Errorf("layout_depth of overlapping track = %v, want 2", depth)
	}
}

func TestSliceLayoutProviderErrors(t *testing.T) {
	p := NewSliceLayoutProvider(testTable(t))
	ctx := context.Background()

	tests := []struct {
		name        string
		constraints []Constraint
		wantCode    errors.Code
	}{
		{"missing filter constraint", nil, errors.ErrCodeInvalidFilter},
		{"non-numeric token", []Constraint{{Column: FilterColumn, Value: "1,x"}}, errors.ErrCodeInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ComputeTable(ctx, tt.constraints, nil)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %v", err, tt.wantCode)
			}
		})
	}
}

func TestSliceLayoutProviderEmptySets(t *testing.T) {
	p := NewSliceLayoutProvider(testTable(t))
	ctx := context.Background()

	for _, filter := range []string{"", "99"} {
		got, err := p.ComputeTable(ctx, []Constraint{{Column: FilterColumn, Value: filter}}, nil)
		if err != nil {
			t.Fatalf("filter %q: unexpected error %v", filter, err)
		}
		if got.RowCount() != 0 {
			t.Errorf("filter %q: RowCount() = %d, want 0", filter, got.RowCount())
		}
	}
}

func TestSliceLayoutProviderHints(t *testing.T) {
	p := NewSliceLayoutProvider(testTable(t))

	got, err := p.ComputeTable(context.Background(),
		[]Constraint{{Column: FilterColumn, Value: "1,2"}},
		[]layout.OrderHint{{Column: "ts", Desc: true}})
	if err != nil {
		t.Fatal(err)
	}
	if got.Get(0, "ts") != int64(3) {
		t.Errorf("first row ts = %v, want 3 with descending hint", got.Get(0, "ts"))
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	p := NewSliceLayoutProvider(testTable(t))

	if err := r.Register(SliceLayoutTableName, p); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(SliceLayoutTableName, p); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("duplicate Register error = %v, want INTERNAL_ERROR", err)
	}

	got, err := r.Lookup(SliceLayoutTableName)
	if err != nil {
		t.Fatal(err)
	}
	if got != Provider(p) {
		t.Error("Lookup returned a different provider")
	}

	if _, err := r.Lookup("missing"); !errors.Is(err, errors.ErrCodeTableNotFound) {
		t.Errorf("Lookup(missing) error = %v, want TABLE_NOT_FOUND", err)
	}

	if names := r.Names(); len(names) != 1 || names[0] != SliceLayoutTableName {
		t.Errorf("Names() = %v", names)
	}
}
