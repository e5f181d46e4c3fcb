package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type traceFile struct {
	Slices []sliceRecord `json:"slices"`
}

type sliceRecord struct {
	ID            SliceID `json:"id"`
	TrackID       TrackID `json:"track_id"`
	TS            int64   `json:"ts"`
	Dur           int64   `json:"dur"`
	Depth         uint32  `json:"depth"`
	Name          string  `json:"name,omitempty"`
	StackID       int64   `json:"stack_id"`
	ParentStackID int64   `json:"parent_stack_id,omitempty"`
}

// ReadTrace decodes a JSON trace from r into a SliceTable.
//
// The input must be a JSON object with a "slices" array:
//
//	{
//	  "slices": [
//	    {"id": 1, "track_id": 1, "ts": 0, "dur": 4, "depth": 0,
//	     "name": "measure", "stack_id": 1, "parent_stack_id": 0}
//	  ]
//	}
//
// Slice names are interned into the table's string pool on read. ReadTrace
// returns an error if the JSON is malformed or a slice has a negative
// duration. It does not close r.
func ReadTrace(r io.Reader) (*SliceTable, error) {
	var data traceFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := NewSliceTable(nil)
	for _, rec := range data.Slices {
		s := Slice{
			ID:            rec.ID,
			TrackID:       rec.TrackID,
			TS:            rec.TS,
			Dur:           rec.Dur,
			Depth:         rec.Depth,
			Name:          t.pool.Intern(rec.Name),
			StackID:       rec.StackID,
			ParentStackID: rec.ParentStackID,
		}
		if err := t.Insert(s); err != nil {
			return nil, fmt.Errorf("slice %d: %w", rec.ID, err)
		}
	}
	return t, nil
}

// ReadTraceFile reads a JSON trace file at path.
func ReadTraceFile(path string) (*SliceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTrace(f)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	return t, nil
}

// WriteTrace encodes a SliceTable as JSON and writes it to w.
// The output round-trips through [ReadTrace].
func WriteTrace(t *SliceTable, w io.Writer) error {
	out := traceFile{Slices: make([]sliceRecord, t.Len())}
	for i := 0; i < t.Len(); i++ {
		s := t.Row(i)
		out.Slices[i] = sliceRecord{
			ID:            s.ID,
			TrackID:       s.TrackID,
			TS:            s.TS,
			Dur:           s.Dur,
			Depth:         s.Depth,
			Name:          t.pool.Get(s.Name),
			StackID:       s.StackID,
			ParentStackID: s.ParentStackID,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTraceFile writes a SliceTable to a JSON file at path.
func WriteTraceFile(t *SliceTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTrace(t, f); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	return nil
}
