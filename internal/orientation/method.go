// Package orientation maps a requested flip method and the stream's
// image-orientation tag onto the rotation/scale parameters applied to a
// transformation stage.
package orientation

import (
	"errors"
	"fmt"
)

// ErrInvalidMethod is returned when a method nick or value is unknown.
var ErrInvalidMethod = errors.New("orientation: invalid method")

// Method is a video flip method.
type Method int

const (
	// Identity leaves frames untouched
	Identity Method = iota
	// Rotate90CW rotates clockwise 90 degrees
	Rotate90CW
	// Rotate180 rotates 180 degrees
	Rotate180
	// Rotate90CCW rotates counter-clockwise 90 degrees
	Rotate90CCW
	// FlipHorizontal mirrors around the vertical axis
	FlipHorizontal
	// FlipVertical mirrors around the horizontal axis
	FlipVertical
	// FlipDiagonalA flips across the upper-left/lower-right diagonal
	FlipDiagonalA
	// FlipDiagonalB flips across the upper-right/lower-left diagonal
	FlipDiagonalB
	// Auto follows the image-orientation tag
	Auto
)

var methodInfo = [...]struct {
	nick string
	desc string
}{
	Identity:       {"none", "Identity (no rotation)"},
	Rotate90CW:     {"clockwise", "Rotate clockwise 90 degrees"},
	Rotate180:      {"rotate-180", "Rotate 180 degrees"},
	Rotate90CCW:    {"counterclockwise", "Rotate counter-clockwise 90 degrees"},
	FlipHorizontal: {"horizontal-flip", "Flip horizontally"},
	FlipVertical:   {"vertical-flip", "Flip vertically"},
	FlipDiagonalA:  {"upper-left-diagonal", "Flip across upper left/lower right diagonal"},
	FlipDiagonalB:  {"upper-right-diagonal", "Flip across upper right/lower left diagonal"},
	Auto:           {"automatic", "Select flip method based on image-orientation tag"},
}

// Methods lists every method in declaration order.
func Methods() []Method {
	out := make([]Method, 0, len(methodInfo))
	for m := range methodInfo {
		out = append(out, Method(m))
	}
	return out
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	return m >= Identity && m <= Auto
}

// Concrete reports whether m describes an actual transform (not Auto).
func (m Method) Concrete() bool {
	return m >= Identity && m < Auto
}

// String returns the property nick ("none", "clockwise", ...).
func (m Method) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodInfo[m].nick
}

// Description returns the human readable description of m.
func (m Method) Description() string {
	if !m.Valid() {
		return ""
	}
	return methodInfo[m].desc
}

// SwapsAxes reports whether m exchanges width and height.
func (m Method) SwapsAxes() bool {
	switch m {
	case Rotate90CW, Rotate90CCW, FlipDiagonalA, FlipDiagonalB:
		return true
	}
	return false
}

// ParseMethod resolves a property nick.
func ParseMethod(nick string) (Method, error) {
	for m, info := range methodInfo {
		if info.nick == nick {
			return Method(m), nil
		}
	}
	return Identity, fmt.Errorf("%w: %q", ErrInvalidMethod, nick)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Resolve returns the method in effect: the tag-derived method when the
// user asked for Auto, otherwise the user's choice.
func Resolve(user, tag Method) Method {
	if user == Auto {
		return tag
	}
	return user
}
