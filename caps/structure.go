package caps

import (
	"strings"
)

// Field is a named value inside a Structure.
type Field struct {
	Name  string
	Value Value
}

// Structure is one format alternative: a media type, optional caps features
// and an ordered list of fields.
type Structure struct {
	Name     string
	Features []string
	Fields   []Field
}

// NewStructure creates a structure with the given media type and fields.
func NewStructure(name string, fields ...Field) Structure {
	s := Structure{Name: name}
	for _, f := range fields {
		s.Set(f.Name, f.Value)
	}
	return s
}

// Get returns the value of a field.
func (s Structure) Get(name string) (Value, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether the field is present.
func (s Structure) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Int returns a fixed integer field. Ranges and lists do not count.
func (s Structure) Int(name string) (int, bool) {
	v, ok := s.Get(name)
	if !ok {
		return 0, false
	}
	i, ok := v.(Int)
	return int(i), ok
}

// Fraction returns a fixed fraction field.
func (s Structure) Fraction(name string) (Fraction, bool) {
	v, ok := s.Get(name)
	if !ok {
		return Fraction{}, false
	}
	f, ok := v.(Fraction)
	return f, ok
}

// StringField returns a fixed string field.
func (s Structure) StringField(name string) (string, bool) {
	v, ok := s.Get(name)
	if !ok {
		return "", false
	}
	str, ok := v.(String)
	return string(str), ok
}

// Set replaces the field value, appending the field if it is new.
func (s *Structure) Set(name string, v Value) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields[i].Value = v
			return
		}
	}
	s.Fields = append(s.Fields, Field{Name: name, Value: v})
}

// Remove deletes a field if present.
func (s *Structure) Remove(name string) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
			return
		}
	}
}

// Copy returns a deep copy; the result shares no slices with s.
func (s Structure) Copy() Structure {
	out := Structure{Name: s.Name}
	if len(s.Features) > 0 {
		out.Features = append([]string(nil), s.Features...)
	}
	if len(s.Fields) > 0 {
		out.Fields = make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: copyValue(f.Value)}
		}
	}
	return out
}

func copyValue(v Value) Value {
	if l, ok := v.(List); ok {
		out := make(List, len(l))
		for i, e := range l {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

// IsFixed reports whether every field holds exactly one value.
func (s Structure) IsFixed() bool {
	for _, f := range s.Fields {
		if !isFixedValue(f.Value) {
			return false
		}
	}
	return true
}

// Fixate returns a copy with every field reduced to a single value.
func (s Structure) Fixate() Structure {
	out := s.Copy()
	for i := range out.Fields {
		out.Fields[i].Value = fixateValue(out.Fields[i].Value)
	}
	return out
}

// Equal compares media type, features and fields, ignoring field order.
func (s Structure) Equal(o Structure) bool {
	if s.Name != o.Name || s.featureKey() != o.featureKey() || len(s.Fields) != len(o.Fields) {
		return false
	}
	for _, f := range s.Fields {
		v, ok := o.Get(f.Name)
		if !ok || v.TypeName() != f.Value.TypeName() || v.String() != f.Value.String() {
			return false
		}
	}
	return true
}

func (s Structure) featureKey() string {
	if len(s.Features) == 0 {
		return ""
	}
	return strings.Join(s.Features, ",")
}

// intersect merges two structures; fields present in only one side are kept.
func (s Structure) intersect(o Structure) (Structure, bool) {
	if s.Name != o.Name || s.featureKey() != o.featureKey() {
		return Structure{}, false
	}
	out := Structure{Name: s.Name}
	if len(s.Features) > 0 {
		out.Features = append([]string(nil), s.Features...)
	}
	for _, f := range s.Fields {
		ov, ok := o.Get(f.Name)
		if !ok {
			out.Fields = append(out.Fields, Field{Name: f.Name, Value: copyValue(f.Value)})
			continue
		}
		v, ok := intersectValues(f.Value, ov)
		if !ok {
			return Structure{}, false
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Value: v})
	}
	for _, f := range o.Fields {
		if !s.Has(f.Name) {
			out.Fields = append(out.Fields, Field{Name: f.Name, Value: copyValue(f.Value)})
		}
	}
	return out, true
}

// String renders the structure in caps text form.
func (s Structure) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if len(s.Features) > 0 {
		b.WriteString("(")
		b.WriteString(strings.Join(s.Features, ", "))
		b.WriteString(")")
	}
	for _, f := range s.Fields {
		b.WriteString(", ")
		b.WriteString(f.Name)
		b.WriteString("=(")
		b.WriteString(f.Value.TypeName())
		b.WriteString(")")
		b.WriteString(f.Value.String())
	}
	return b.String()
}
