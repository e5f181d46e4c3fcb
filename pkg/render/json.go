package render

import (
	"encoding/json"
	"fmt"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

type jsonOutput struct {
	FilterTrackIDs string    `json:"filter_track_ids"`
	GroupCount     int       `json:"group_count"`
	BandCount      int       `json:"band_count"`
	TotalHeight    uint32    `json:"total_height"`
	Rows           []jsonRow `json:"rows"`
}

type jsonRow struct {
	ID            trace.SliceID `json:"id"`
	TrackID       trace.TrackID `json:"track_id"`
	TS            int64         `json:"ts"`
	Dur           int64         `json:"dur"`
	Name          string        `json:"name,omitempty"`
	StackID       int64         `json:"stack_id"`
	ParentStackID int64         `json:"parent_stack_id,omitempty"`
	LayoutDepth   uint32        `json:"layout_depth"`
}

// RenderJSON marshals a layout result for downstream tooling. Name handles
// are resolved through the pool so the output is self-contained. The row
// order is preserved, so equal results marshal to identical bytes.
func RenderJSON(res *layout.Result, pool *trace.StringPool) ([]byte, error) {
	out := jsonOutput{
		FilterTrackIDs: res.Filter.String(),
		GroupCount:     res.GroupCount,
		BandCount:      res.BandCount,
		TotalHeight:    res.TotalHeight,
		Rows:           make([]jsonRow, len(res.Rows)),
	}
	for i, r := range res.Rows {
		out.Rows[i] = jsonRow{
			ID:            r.Slice.ID,
			TrackID:       r.Slice.TrackID,
			TS:            r.Slice.TS,
			Dur:           r.Slice.Dur,
			Name:          pool.Get(r.Slice.Name),
			StackID:       r.Slice.StackID,
			ParentStackID: r.Slice.ParentStackID,
			LayoutDepth:   r.LayoutDepth,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return append(data, '\n'), nil
}
