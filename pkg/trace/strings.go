package trace

// StringPool is an append-only string interner. Interning the same string
// twice returns the same handle. The pool is never mutated by the layout
// engine; it only resolves handles back to strings.
//
// Handle 0 is always the empty string.
type StringPool struct {
	strs  []string
	index map[string]StringID
}

// NewStringPool creates a pool with the empty string pre-interned at handle 0.
func NewStringPool() *StringPool {
	p := &StringPool{
		strs:  []string{""},
		index: map[string]StringID{"": 0},
	}
	return p
}

// Intern returns the handle for s, appending it to the pool if new.
func (p *StringPool) Intern(s string) StringID {
	if id, ok := p.index[s]; ok {
		return id
	}
	id := StringID(len(p.strs))
	p.strs = append(p.strs, s)
	p.index[s] = id
	return id
}

// Get resolves a handle to its string. Unknown handles resolve to "".
func (p *StringPool) Get(id StringID) string {
	if int(id) >= len(p.strs) {
		return ""
	}
	return p.strs[id]
}

// Len returns the number of interned strings, including the empty string.
func (p *StringPool) Len() int {
	return len(p.strs)
}
