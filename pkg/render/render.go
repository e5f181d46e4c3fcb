// Package render turns layout results into viewable artifacts.
//
// Four sinks are provided:
//   - ASCII: one text row per layout depth ([Waterfall]), the canonical
//     quick-look form of a merged layout
//   - SVG: a scalable waterfall with one rect per slice ([RenderSVG])
//   - DOT: the stack-group forest as a Graphviz graph ([ToDOT]), with
//     optional rasterization through the graphviz engine ([RenderDOTSVG])
//   - JSON: the materialized result for downstream tooling ([RenderJSON])
//
// All sinks are pure functions of the layout result; rendering the same
// result twice yields identical bytes.
package render

// Output formats accepted by the CLI and API.
const (
	FormatASCII = "ascii"
	FormatSVG   = "svg"
	FormatDOT   = "dot"
	FormatJSON  = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatASCII, FormatSVG, FormatDOT, FormatJSON}

// IsValidFormat reports whether f names a supported output format.
func IsValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}
