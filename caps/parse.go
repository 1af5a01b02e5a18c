package caps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for caps text that cannot be parsed.
var ErrSyntax = errors.New("caps: syntax error")

// MustParse is like Parse but panics on error. Intended for templates.
func MustParse(s string) Caps {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads caps text such as
//
//	video/x-raw(memory:GLMemory), format=(string)RGBA, width=(int)[ 1, 2147483647 ]
//
// Multiple alternatives are separated by ';'. Values of unknown types are
// preserved verbatim as Raw.
func Parse(s string) (Caps, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "ANY":
		return Any(), nil
	case "", "EMPTY", "NONE":
		return Caps{}, nil
	}

	parts, err := splitTop(s, ';')
	if err != nil {
		return Caps{}, err
	}
	c := Caps{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		st, err := parseStructure(p)
		if err != nil {
			return Caps{}, err
		}
		c.structures = append(c.structures, st)
	}
	return c, nil
}

func parseStructure(s string) (Structure, error) {
	parts, err := splitTop(s, ',')
	if err != nil {
		return Structure{}, err
	}

	head := strings.TrimSpace(parts[0])
	st := Structure{Name: head}
	if i := strings.IndexByte(head, '('); i >= 0 {
		if !strings.HasSuffix(head, ")") {
			return Structure{}, fmt.Errorf("%w: unterminated features in %q", ErrSyntax, head)
		}
		st.Name = strings.TrimSpace(head[:i])
		for _, f := range strings.Split(head[i+1:len(head)-1], ",") {
			if f = strings.TrimSpace(f); f != "" {
				st.Features = append(st.Features, f)
			}
		}
	}
	if st.Name == "" {
		return Structure{}, fmt.Errorf("%w: missing media type in %q", ErrSyntax, s)
	}

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		eq := strings.IndexByte(p, '=')
		if eq <= 0 {
			return Structure{}, fmt.Errorf("%w: field %q has no value", ErrSyntax, p)
		}
		name := strings.TrimSpace(p[:eq])
		v, err := parseValue(strings.TrimSpace(p[eq+1:]))
		if err != nil {
			return Structure{}, fmt.Errorf("field %s: %w", name, err)
		}
		st.Set(name, v)
	}
	return st, nil
}

func parseValue(s string) (Value, error) {
	typ := ""
	if strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated type in %q", ErrSyntax, s)
		}
		typ = normalizeType(strings.TrimSpace(s[1:end]))
		s = strings.TrimSpace(s[end+1:])
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrSyntax)
	}

	switch s[0] {
	case '[':
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("%w: unterminated range %q", ErrSyntax, s)
		}
		return parseRange(typ, s[1:len(s)-1])
	case '{':
		if !strings.HasSuffix(s, "}") {
			return nil, fmt.Errorf("%w: unterminated list %q", ErrSyntax, s)
		}
		elems, err := splitTop(s[1:len(s)-1], ',')
		if err != nil {
			return nil, err
		}
		var l List
		for _, e := range elems {
			v, err := parseScalar(typ, strings.TrimSpace(e))
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	}
	return parseScalar(typ, s)
}

func parseRange(typ, body string) (Value, error) {
	elems, err := splitTop(body, ',')
	if err != nil {
		return nil, err
	}
	// A third element is a step; it is accepted and ignored.
	if len(elems) < 2 || len(elems) > 3 {
		return nil, fmt.Errorf("%w: range needs two bounds, got %q", ErrSyntax, body)
	}
	lo, err := parseScalar(typ, strings.TrimSpace(elems[0]))
	if err != nil {
		return nil, err
	}
	hi, err := parseScalar(typ, strings.TrimSpace(elems[1]))
	if err != nil {
		return nil, err
	}
	switch l := lo.(type) {
	case Int:
		if h, ok := hi.(Int); ok {
			return IntRange{Min: int(l), Max: int(h)}, nil
		}
	case Fraction:
		if h, ok := hi.(Fraction); ok {
			return FractionRange{Min: l, Max: h}, nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported range %q", ErrSyntax, body)
}

func parseScalar(typ, s string) (Value, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrSyntax)
	}
	// Elements inside lists may carry their own annotation.
	if strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated type in %q", ErrSyntax, s)
		}
		typ = normalizeType(strings.TrimSpace(s[1:end]))
		s = strings.TrimSpace(s[end+1:])
	}

	switch typ {
	case "int":
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad int %q", ErrSyntax, s)
		}
		return Int(n), nil
	case "fraction":
		f, ok := parseFraction(s)
		if !ok {
			return nil, fmt.Errorf("%w: bad fraction %q", ErrSyntax, s)
		}
		return f, nil
	case "string":
		return String(unquote(s)), nil
	case "":
		if n, err := strconv.Atoi(s); err == nil {
			return Int(n), nil
		}
		if f, ok := parseFraction(s); ok {
			return f, nil
		}
		return String(unquote(s)), nil
	}
	return Raw{Type: typ, Text: s}, nil
}

func parseFraction(s string) (Fraction, bool) {
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return Fraction{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:slash]))
	if err != nil {
		return Fraction{}, false
	}
	d, err := strconv.Atoi(strings.TrimSpace(s[slash+1:]))
	if err != nil {
		return Fraction{}, false
	}
	return Fraction{Num: n, Den: d}, true
}

func normalizeType(t string) string {
	switch t {
	case "int", "i", "gint":
		return "int"
	case "fraction", "GstFraction":
		return "fraction"
	case "string", "s", "str", "gchararray":
		return "string"
	}
	return t
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

// splitTop splits s at sep characters that are not nested inside brackets,
// braces, parentheses, angle brackets or quotes.
func splitTop(s string, sep byte) ([]string, error) {
	var (
		parts  []string
		depth  int
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quoted {
			switch c {
			case '\\':
				i++
			case '"':
				quoted = false
			}
			continue
		}
		switch c {
		case '"':
			quoted = true
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q at offset %d", ErrSyntax, c, i)
			}
		default:
			if c == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || quoted {
		return nil, fmt.Errorf("%w: unbalanced input %q", ErrSyntax, s)
	}
	return append(parts, s[start:]), nil
}
