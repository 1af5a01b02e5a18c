package caps

import (
	"fmt"
	"strings"
)

// Value is a single field value inside a Structure.
type Value interface {
	// String renders the value without its type annotation.
	String() string
	// TypeName is the caps type annotation ("int", "fraction", ...).
	TypeName() string
}

// Int is a fixed integer.
type Int int

func (v Int) String() string   { return fmt.Sprintf("%d", int(v)) }
func (v Int) TypeName() string { return "int" }

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int
	Max int
}

func (v IntRange) String() string   { return fmt.Sprintf("[ %d, %d ]", v.Min, v.Max) }
func (v IntRange) TypeName() string { return "int" }

// Fraction is a rational value such as a frame rate or pixel-aspect-ratio.
type Fraction struct {
	Num int
	Den int
}

func (v Fraction) String() string   { return fmt.Sprintf("%d/%d", v.Num, v.Den) }
func (v Fraction) TypeName() string { return "fraction" }

// Invert swaps numerator and denominator.
func (v Fraction) Invert() Fraction { return Fraction{Num: v.Den, Den: v.Num} }

// IsOne reports whether the fraction equals 1 (any n/n with n != 0).
func (v Fraction) IsOne() bool { return v.Num == v.Den && v.Den != 0 }

// Cmp compares two fractions: -1, 0 or +1.
func (v Fraction) Cmp(o Fraction) int {
	a := int64(v.Num) * int64(o.Den)
	b := int64(o.Num) * int64(v.Den)
	// Negative denominators flip the inequality.
	if (v.Den < 0) != (o.Den < 0) {
		a, b = b, a
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// FractionRange is an inclusive fraction range.
type FractionRange struct {
	Min Fraction
	Max Fraction
}

func (v FractionRange) String() string   { return fmt.Sprintf("[ %s, %s ]", v.Min, v.Max) }
func (v FractionRange) TypeName() string { return "fraction" }

// String is a plain string value.
type String string

func (v String) String() string {
	s := string(v)
	if strings.ContainsAny(s, ",;[]{}() \"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
func (v String) TypeName() string { return "string" }

// List holds alternative values; any one of them is acceptable.
type List []Value

func (v List) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (v List) TypeName() string {
	if len(v) == 0 {
		return "string"
	}
	return v[0].TypeName()
}

// Raw keeps values of types this package does not interpret (flags,
// booleans, bitmasks) so they survive a parse/print round trip.
type Raw struct {
	Type string
	Text string
}

func (v Raw) String() string   { return v.Text }
func (v Raw) TypeName() string { return v.Type }

// intersectValues returns the common part of a and b.
func intersectValues(a, b Value) (Value, bool) {
	if l, ok := a.(List); ok {
		return intersectList(l, b)
	}
	if l, ok := b.(List); ok {
		return intersectList(l, a)
	}

	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x, x == y
		case IntRange:
			return x, int(x) >= y.Min && int(x) <= y.Max
		}
	case IntRange:
		switch y := b.(type) {
		case Int:
			return y, int(y) >= x.Min && int(y) <= x.Max
		case IntRange:
			lo, hi := max(x.Min, y.Min), min(x.Max, y.Max)
			if lo > hi {
				return nil, false
			}
			if lo == hi {
				return Int(lo), true
			}
			return IntRange{Min: lo, Max: hi}, true
		}
	case Fraction:
		switch y := b.(type) {
		case Fraction:
			return x, x.Cmp(y) == 0
		case FractionRange:
			return x, x.Cmp(y.Min) >= 0 && x.Cmp(y.Max) <= 0
		}
	case FractionRange:
		switch y := b.(type) {
		case Fraction:
			return y, y.Cmp(x.Min) >= 0 && y.Cmp(x.Max) <= 0
		case FractionRange:
			lo, hi := x.Min, x.Max
			if y.Min.Cmp(lo) > 0 {
				lo = y.Min
			}
			if y.Max.Cmp(hi) < 0 {
				hi = y.Max
			}
			switch lo.Cmp(hi) {
			case 1:
				return nil, false
			case 0:
				return lo, true
			}
			return FractionRange{Min: lo, Max: hi}, true
		}
	case String:
		if y, ok := b.(String); ok {
			return x, x == y
		}
	case Raw:
		if y, ok := b.(Raw); ok {
			return x, x == y
		}
	}
	return nil, false
}

func intersectList(l List, other Value) (Value, bool) {
	var out List
	for _, e := range l {
		if v, ok := intersectValues(e, other); ok {
			out = append(out, v)
		}
	}
	switch len(out) {
	case 0:
		return nil, false
	case 1:
		return out[0], true
	}
	return out, true
}

// isFixedValue reports whether v denotes exactly one value.
func isFixedValue(v Value) bool {
	switch x := v.(type) {
	case IntRange, FractionRange:
		return false
	case List:
		return len(x) == 1 && isFixedValue(x[0])
	}
	return true
}

// fixateValue picks one concrete value out of v.
func fixateValue(v Value) Value {
	switch x := v.(type) {
	case IntRange:
		return Int(x.Min)
	case FractionRange:
		return x.Min
	case List:
		if len(x) == 0 {
			return x
		}
		return fixateValue(x[0])
	}
	return v
}
