package model

import (
	"strconv"
	"strings"
)

const pathDelimiter = "."

var (
	keyEscaper   = strings.NewReplacer("~", "~0", ".", "~1")
	keyUnescaper = strings.NewReplacer("~1", ".", "~0", "~")
)

// Hop addresses one sub-field of one item inside a repeatable field.
type Hop struct {
	Index int
	Key   string
}

// Path is the runtime id of a value: a declared field id followed by zero or
// more item hops. Top-level fields have no hops; array item sub-fields render
// as {arrayId}.{index}.{subKey}.
type Path struct {
	Field string
	Hops  []Hop
}

// FieldPath returns the path of a top-level field.
func FieldPath(id string) Path {
	return Path{Field: id}
}

// Item returns the path of sub-field key inside item index of p.
func (p Path) Item(index int, key string) Path {
	hops := make([]Hop, len(p.Hops), len(p.Hops)+1)
	copy(hops, p.Hops)
	return Path{Field: p.Field, Hops: append(hops, Hop{Index: index, Key: key})}
}

// Parent splits off the last hop. It reports false for top-level paths.
func (p Path) Parent() (Path, Hop, bool) {
	if len(p.Hops) == 0 {
		return p, Hop{}, false
	}
	last := p.Hops[len(p.Hops)-1]
	hops := append([]Hop(nil), p.Hops[:len(p.Hops)-1]...)
	if len(hops) == 0 {
		hops = nil
	}
	return Path{Field: p.Field, Hops: hops}, last, true
}

// IsTopLevel reports whether p addresses a declared field directly.
func (p Path) IsTopLevel() bool {
	return len(p.Hops) == 0
}

// Equal compares two paths hop by hop.
func (p Path) Equal(other Path) bool {
	if p.Field != other.Field || len(p.Hops) != len(other.Hops) {
		return false
	}
	for i := range p.Hops {
		if p.Hops[i] != other.Hops[i] {
			return false
		}
	}
	return true
}

// String renders the runtime id used as ErrorMap key. Template keys are
// escaped (~ as ~0, . as ~1) so a key containing the delimiter stays
// unambiguous.
func (p Path) String() string {
	if len(p.Hops) == 0 {
		return p.Field
	}
	var b strings.Builder
	b.WriteString(p.Field)
	for _, hop := range p.Hops {
		b.WriteString(pathDelimiter)
		b.WriteString(strconv.Itoa(hop.Index))
		b.WriteString(pathDelimiter)
		b.WriteString(keyEscaper.Replace(hop.Key))
	}
	return b.String()
}

// ResolvePath parses a rendered runtime id. Declared ids may themselves
// contain dots, so the longest declared id that prefixes raw wins and the
// remainder is read as index/key pairs.
func (f Form) ResolvePath(raw string) (Path, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Path{}, false
	}

	best := ""
	for _, field := range f.Fields {
		id := field.ID
		if raw != id && !strings.HasPrefix(raw, id+pathDelimiter) {
			continue
		}
		if len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return Path{}, false
	}

	path := Path{Field: best}
	rest := strings.TrimPrefix(raw, best)
	if rest == "" {
		return path, true
	}

	segments := strings.Split(strings.TrimPrefix(rest, pathDelimiter), pathDelimiter)
	if len(segments)%2 != 0 {
		return Path{}, false
	}
	for i := 0; i < len(segments); i += 2 {
		idx, err := strconv.Atoi(segments[i])
		if err != nil || idx < 0 {
			return Path{}, false
		}
		path.Hops = append(path.Hops, Hop{Index: idx, Key: keyUnescaper.Replace(segments[i+1])})
	}
	if _, ok := f.Lookup(path); !ok {
		return Path{}, false
	}
	return path, true
}
