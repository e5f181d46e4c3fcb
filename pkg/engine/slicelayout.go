package engine

import (
	"context"

	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

// SliceLayoutTableName is the name the slice layout provider is registered
// under.
const SliceLayoutTableName = "slice_layout"

// FilterColumn is the designated parameter column of the slice layout
// table. Queries must constrain it with an equality on a comma-joined list
// of track ids.
const FilterColumn = "filter_track_ids"

// SliceLayoutColumns is the output schema: every original slice column
// except the per-track depth, plus the merged layout_depth and the
// filter_track_ids provenance tag.
var SliceLayoutColumns = []string{
	"id", "track_id", "ts", "dur", "name",
	"stack_id", "parent_stack_id", "layout_depth", FilterColumn,
}

// SliceLayoutProvider binds the layout engine to the dynamic-table
// protocol for one slice table. The provider holds only read-only state and
// is safe for concurrent invocations.
type SliceLayoutProvider struct {
	tbl *trace.SliceTable
}

// NewSliceLayoutProvider creates a provider over the given slice table.
func NewSliceLayoutProvider(tbl *trace.SliceTable) *SliceLayoutProvider {
	return &SliceLayoutProvider{tbl: tbl}
}

// ComputeTable runs one layout query. The constraints must include an
// equality on filter_track_ids; its value is the comma-joined track list.
// An empty or non-matching track set yields an empty table, not an error.
func (p *SliceLayoutProvider) ComputeTable(ctx context.Context, constraints []Constraint, hints []layout.OrderHint) (*Table, error) {
	filterValue, ok := findFilter(constraints)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFilter,
			"query must constrain %s with an equality", FilterColumn)
	}

	set, err := trace.ParseTrackSet(filterValue)
	if err != nil {
		return nil, err
	}

	res, err := layout.Compute(p.tbl, set, hints)
	if err != nil {
		return nil, err
	}

	pool := p.tbl.Pool()
	out := &Table{Columns: SliceLayoutColumns, Rows: make([][]any, len(res.Rows))}
	for i, r := range res.Rows {
		out.Rows[i] = []any{
			int64(r.Slice.ID),
			int64(r.Slice.TrackID),
			r.Slice.TS,
			r.Slice.Dur,
			pool.Get(r.Slice.Name),
			r.Slice.StackID,
			r.Slice.ParentStackID,
			int64(r.LayoutDepth),
			r.FilterTrackIDs,
		}
	}
	return out, nil
}

func findFilter(constraints []Constraint) (string, bool) {
	for _, c := range constraints {
		if c.Column == FilterColumn {
			return c.Value, true
		}
	}
	return "", false
}
