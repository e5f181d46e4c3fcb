package layout

import "strings"

// ParseHints parses a comma-joined hint list like "ts,-dur" into order
// hints. A leading '-' marks a descending column. Empty tokens are skipped;
// unknown columns are kept and ignored downstream.
func ParseHints(s string) []OrderHint {
	if s == "" {
		return nil
	}
	var hints []OrderHint
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		h := OrderHint{Column: tok}
		if strings.HasPrefix(tok, "-") {
			h = OrderHint{Column: tok[1:], Desc: true}
		}
		hints = append(hints, h)
	}
	return hints
}
