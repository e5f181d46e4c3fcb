package layout

import (
	"github.com/traceband/traceband/pkg/errors"
	"github.com/traceband/traceband/pkg/trace"
)

// Group is one stack group: a root slice plus every descendant reachable
// through ParentStackID links within the filtered slice set. Groups are
// ephemeral; a fresh set is built for every layout computation.
type Group struct {
	// RootStackID keys the group. Sibling invocations of the same call path
	// share a stack id and therefore a group.
	RootStackID int64

	// Start is the earliest root timestamp in the group.
	Start int64

	// End is the maximum end over all member slices. Normally the root's
	// end, but computed as a max in case of malformed nesting.
	End int64

	// Height is 1 + the maximum member depth.
	Height uint32

	// members holds indexes into the filtered input, in delivery order.
	members []int

	// band is the allocator's assignment, an index into the band list.
	band int
}

// ExtractGroups partitions filtered slices into stack groups.
//
// Slices must already be restricted to the requested track set and ordered
// time-ascending as delivered by storage. A slice with the sentinel parent
// starts a group; a slice whose parent is not present in the filtered set is
// treated as a root of its own rather than an error. Start, End and Height
// are computed in the same pass.
//
// Corrupt trace data fails fast with errors.ErrCodeCorruptTrace rather than
// mis-packing: a parent/child cycle in the stack id links, or a child whose
// depth is not its parent's depth + 1.
func ExtractGroups(slices []trace.Slice) ([]*Group, error) {
	// Index the parent relation by stack id. Depth is recorded per stack id
	// for the continuity check; slices sharing a stack id share a call path
	// and therefore a depth.
	parentOf := make(map[int64]int64, len(slices))
	depthOf := make(map[int64]uint32, len(slices))
	for _, s := range slices {
		if _, ok := parentOf[s.StackID]; !ok {
			parentOf[s.StackID] = s.ParentStackID
			depthOf[s.StackID] = s.Depth
		}
	}

	groups := make(map[int64]*Group)
	var order []int64

	for i, s := range slices {
		if parentID := s.ParentStackID; parentID != trace.NoParent {
			if parentDepth, ok := depthOf[parentID]; ok && s.Depth != parentDepth+1 {
				return nil, errors.New(errors.ErrCodeCorruptTrace,
					"slice %d at depth %d has parent at depth %d", s.ID, s.Depth, parentDepth)
			}
		}

		rootID, err := resolveRoot(s, parentOf)
		if err != nil {
			return nil, err
		}

		g, ok := groups[rootID]
		if !ok {
			g = &Group{RootStackID: rootID, Start: s.TS, End: s.End(), Height: s.Depth + 1}
			groups[rootID] = g
			order = append(order, rootID)
		}
		g.members = append(g.members, i)
		if s.TS < g.Start {
			g.Start = s.TS
		}
		if end := s.End(); end > g.End {
			g.End = end
		}
		if h := s.Depth + 1; h > g.Height {
			g.Height = h
		}
	}

	out := make([]*Group, len(order))
	for i, id := range order {
		out[i] = groups[id]
	}
	return out, nil
}

// resolveRoot walks parent links up to the root stack id. A parent outside
// the filtered set terminates the walk at the current slice (defensive
// root). The walk is bounded by the number of distinct stack ids; exceeding
// it means the parent links form a cycle, which is corrupt trace data.
func resolveRoot(s trace.Slice, parentOf map[int64]int64) (int64, error) {
	root := s.StackID
	for steps := 0; ; steps++ {
		if steps > len(parentOf) {
			return 0, errors.New(errors.ErrCodeCorruptTrace,
				"parent cycle detected at stack id %d", s.StackID)
		}
		parent, ok := parentOf[root]
		if !ok || parent == trace.NoParent {
			return root, nil
		}
		if _, present := parentOf[parent]; !present {
			// Parent not in the filtered set: treat this slice's subtree
			// as its own group.
			return root, nil
		}
		root = parent
	}
}
