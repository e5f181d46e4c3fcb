package pipeline

import (
	"encoding/json"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

// Cached layouts are stored as compact JSON. Names travel as strings and
// are re-interned into the live pool on decode, so a cached result from a
// previous process still resolves against the current trace's pool.

type cachedRow struct {
	ID            uint32 `json:"id"`
	TrackID       uint32 `json:"track_id"`
	TS            int64  `json:"ts"`
	Dur           int64  `json:"dur"`
	Depth         uint32 `json:"depth"`
	Name          string `json:"name"`
	StackID       int64  `json:"stack_id"`
	ParentStackID int64  `json:"parent_stack_id"`
	LayoutDepth   uint32 `json:"layout_depth"`
}

type cachedResult struct {
	Filter      string      `json:"filter"`
	GroupCount  int         `json:"group_count"`
	BandCount   int         `json:"band_count"`
	TotalHeight uint32      `json:"total_height"`
	Rows        []cachedRow `json:"rows"`
}

func encodeResult(res *layout.Result, pool *trace.StringPool) ([]byte, error) {
	out := cachedResult{
		Filter:      res.Filter.String(),
		GroupCount:  res.GroupCount,
		BandCount:   res.BandCount,
		TotalHeight: res.TotalHeight,
		Rows:        make([]cachedRow, len(res.Rows)),
	}
	for i, row := range res.Rows {
		out.Rows[i] = cachedRow{
			ID:            uint32(row.Slice.ID),
			TrackID:       uint32(row.Slice.TrackID),
			TS:            row.Slice.TS,
			Dur:           row.Slice.Dur,
			Depth:         row.Slice.Depth,
			Name:          pool.Get(row.Slice.Name),
			StackID:       row.Slice.StackID,
			ParentStackID: row.Slice.ParentStackID,
			LayoutDepth:   row.LayoutDepth,
		}
	}
	return json.Marshal(out)
}

func decodeResult(data []byte, pool *trace.StringPool) (*layout.Result, error) {
	var in cachedResult
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	filter, err := trace.ParseTrackSet(in.Filter)
	if err != nil {
		return nil, err
	}
	res := &layout.Result{
		Filter:      filter,
		GroupCount:  in.GroupCount,
		BandCount:   in.BandCount,
		TotalHeight: in.TotalHeight,
		Rows:        make([]layout.Row, len(in.Rows)),
	}
	for i, row := range in.Rows {
		res.Rows[i] = layout.Row{
			Slice: trace.Slice{
				ID:            trace.SliceID(row.ID),
				TrackID:       trace.TrackID(row.TrackID),
				TS:            row.TS,
				Dur:           row.Dur,
				Depth:         row.Depth,
				Name:          pool.Intern(row.Name),
				StackID:       row.StackID,
				ParentStackID: row.ParentStackID,
			},
			LayoutDepth:    row.LayoutDepth,
			FilterTrackIDs: in.Filter,
		}
	}
	return res, nil
}
