package render

import (
	"strings"

	"github.com/traceband/traceband/pkg/layout"
)

// Waterfall renders a layout as ASCII art: one text line per layout depth,
// with '#' marking every timestamp covered by a slice's half-open interval.
// Zero-duration slices leave no mark, matching their empty interval.
//
// The origin is timestamp 0, so a layout whose earliest slice starts later
// is left-padded; this keeps separate renders of the same trace aligned.
// Traces with negative timestamps shift the origin to their earliest slice
// instead, so every mark lands at a valid column.
func Waterfall(rows []layout.Row) string {
	var origin int64
	for _, r := range rows {
		if r.Slice.TS < origin {
			origin = r.Slice.TS
		}
	}

	var lines [][]byte
	for _, r := range rows {
		y := int(r.LayoutDepth)
		for len(lines) <= y {
			lines = append(lines, nil)
		}
		for j := int64(0); j < r.Slice.Dur; j++ {
			x := int(r.Slice.TS - origin + j)
			for len(lines[y]) <= x {
				lines[y] = append(lines[y], ' ')
			}
			lines[y][x] = '#'
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.Write(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
