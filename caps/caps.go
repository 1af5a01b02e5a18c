// Package caps models format capabilities: an ordered set of structures
// describing acceptable media formats, with intersection, union and a text
// codec compatible with the GStreamer caps grammar.
//
// Caps are value types. Every accessor hands out copies so a Caps captured by
// one stage cannot be mutated through another.
package caps

import (
	"strings"
)

// Caps is an ordered set of format alternatives. The zero value is EMPTY.
type Caps struct {
	any        bool
	structures []Structure
}

// New creates caps from the given alternatives.
func New(structures ...Structure) Caps {
	c := Caps{}
	for _, s := range structures {
		c.structures = append(c.structures, s.Copy())
	}
	return c
}

// Any returns caps that accept every format.
func Any() Caps { return Caps{any: true} }

// IsAny reports whether c accepts every format.
func (c Caps) IsAny() bool { return c.any }

// IsEmpty reports whether c accepts nothing.
func (c Caps) IsEmpty() bool { return !c.any && len(c.structures) == 0 }

// Len returns the number of alternatives.
func (c Caps) Len() int { return len(c.structures) }

// Structure returns a copy of the i-th alternative.
func (c Caps) Structure(i int) Structure { return c.structures[i].Copy() }

// Structures returns copies of all alternatives.
func (c Caps) Structures() []Structure {
	out := make([]Structure, len(c.structures))
	for i, s := range c.structures {
		out[i] = s.Copy()
	}
	return out
}

// Copy returns a deep copy.
func (c Caps) Copy() Caps {
	return Caps{any: c.any, structures: c.Structures()}
}

// Map applies fn to a copy of every alternative and collects the results.
func (c Caps) Map(fn func(Structure) Structure) Caps {
	if c.any {
		return Any()
	}
	out := Caps{structures: make([]Structure, 0, len(c.structures))}
	for _, s := range c.structures {
		out.structures = append(out.structures, fn(s.Copy()))
	}
	return out
}

// Union appends the alternatives of o that c does not already contain.
func (c Caps) Union(o Caps) Caps {
	if c.any || o.any {
		return Any()
	}
	out := c.Copy()
	for _, s := range o.structures {
		if !out.contains(s) {
			out.structures = append(out.structures, s.Copy())
		}
	}
	return out
}

func (c Caps) contains(s Structure) bool {
	for _, e := range c.structures {
		if e.Equal(s) {
			return true
		}
	}
	return false
}

// Intersect returns the alternatives acceptable to both c and o, in c's
// preference order.
func (c Caps) Intersect(o Caps) Caps {
	switch {
	case c.any:
		return o.Copy()
	case o.any:
		return c.Copy()
	}
	out := Caps{}
	for _, a := range c.structures {
		for _, b := range o.structures {
			if s, ok := a.intersect(b); ok && !out.contains(s) {
				out.structures = append(out.structures, s)
			}
		}
	}
	return out
}

// CanIntersect reports whether c and o share at least one format.
func (c Caps) CanIntersect(o Caps) bool {
	if c.any {
		return !o.IsEmpty()
	}
	if o.any {
		return !c.IsEmpty()
	}
	for _, a := range c.structures {
		for _, b := range o.structures {
			if _, ok := a.intersect(b); ok {
				return true
			}
		}
	}
	return false
}

// IsFixed reports whether c describes exactly one concrete format.
func (c Caps) IsFixed() bool {
	return !c.any && len(c.structures) == 1 && c.structures[0].IsFixed()
}

// Fixate reduces c to its first alternative with every field fixed.
func (c Caps) Fixate() Caps {
	if c.any || len(c.structures) == 0 {
		return c.Copy()
	}
	return Caps{structures: []Structure{c.structures[0].Fixate()}}
}

// Equal compares two caps alternative by alternative.
func (c Caps) Equal(o Caps) bool {
	if c.any != o.any || len(c.structures) != len(o.structures) {
		return false
	}
	for i := range c.structures {
		if !c.structures[i].Equal(o.structures[i]) {
			return false
		}
	}
	return true
}

// String renders c in caps text form.
func (c Caps) String() string {
	if c.any {
		return "ANY"
	}
	if len(c.structures) == 0 {
		return "EMPTY"
	}
	parts := make([]string, len(c.structures))
	for i, s := range c.structures {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}
