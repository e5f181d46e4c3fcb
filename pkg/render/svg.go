package render

import (
	"bytes"
	"fmt"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/trace"
)

// trackPalette colors slices by track so merged bands stay readable.
// Tracks cycle through the palette.
var trackPalette = []string{
	"#4e79a7", "#f28e2b", "#59a14f", "#e15759",
	"#76b7b2", "#edc948", "#b07aa1", "#9c755f",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	pxPerTick float64
	rowHeight float64
	showNames bool
}

// WithScale sets the horizontal pixels per trace time unit (default 10).
func WithScale(px float64) SVGOption {
	return func(r *svgRenderer) { r.pxPerTick = px }
}

// WithRowHeight sets the vertical pixels per layout row (default 20).
func WithRowHeight(px float64) SVGOption {
	return func(r *svgRenderer) { r.rowHeight = px }
}

// WithNames draws each slice's name inside its rect.
func WithNames() SVGOption {
	return func(r *svgRenderer) { r.showNames = true }
}

// RenderSVG renders a layout result as an SVG waterfall: one rect per
// output row, positioned horizontally by timestamp and vertically by merged
// layout depth. The pool resolves slice name handles for titles and labels.
func RenderSVG(res *layout.Result, pool *trace.StringPool, opts ...SVGOption) []byte {
	r := &svgRenderer{pxPerTick: 10, rowHeight: 20}
	for _, opt := range opts {
		opt(r)
	}

	var maxEnd int64
	for _, row := range res.Rows {
		if end := row.Slice.End(); end > maxEnd {
			maxEnd = end
		}
	}

	width := float64(maxEnd) * r.pxPerTick
	height := float64(res.TotalHeight) * r.rowHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <style>.slice { stroke: #ffffff; stroke-width: 1; } text { font: 11px sans-serif; fill: #ffffff; }</style>` + "\n")

	for _, row := range res.Rows {
		x := float64(row.Slice.TS) * r.pxPerTick
		y := float64(row.LayoutDepth) * r.rowHeight
		w := float64(row.Slice.Dur) * r.pxPerTick
		name := pool.Get(row.Slice.Name)
		color := trackPalette[int(row.Slice.TrackID)%len(trackPalette)]

		fmt.Fprintf(&buf, `  <rect class="slice" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s">`+"\n",
			x, y, w, r.rowHeight, color)
		fmt.Fprintf(&buf, "    <title>%s [%d, %d) track %d</title>\n",
			escapeText(name), row.Slice.TS, row.Slice.End(), row.Slice.TrackID)
		buf.WriteString("  </rect>\n")

		if r.showNames && row.Slice.Dur > 0 {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f">%s</text>`+"\n",
				x+2, y+r.rowHeight-6, escapeText(name))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
