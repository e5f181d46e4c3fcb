package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

// ToDOT converts the call-path forest behind a layout to Graphviz DOT: one
// node per stack id (sibling invocations of the same path collapse into
// one), one edge per parent/child link. Useful for inspecting the nesting
// structure the band allocator packs as atomic units.
func ToDOT(rows []layout.Row, pool *trace.StringPool) string {
	present := make(map[int64]bool, len(rows))
	for _, r := range rows {
		present[r.Slice.StackID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph stacks {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	emitted := make(map[int64]bool, len(rows))
	for _, r := range rows {
		if emitted[r.Slice.StackID] {
			continue
		}
		emitted[r.Slice.StackID] = true
		label := fmt.Sprintf("%s (track %d)", pool.Get(r.Slice.Name), r.Slice.TrackID)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", nodeID(r.Slice.StackID), label)
	}

	buf.WriteString("\n")
	edgeSeen := make(map[int64]bool, len(rows))
	for _, r := range rows {
		if r.Slice.IsRoot() || !present[r.Slice.ParentStackID] || edgeSeen[r.Slice.StackID] {
			continue
		}
		edgeSeen[r.Slice.StackID] = true
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(r.Slice.ParentStackID), nodeID(r.Slice.StackID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(stackID int64) string {
	return fmt.Sprintf("stack_%d", stackID)
}

// RenderDOTSVG rasterizes a DOT graph to SVG using the graphviz engine.
func RenderDOTSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
