package orientation

import "fmt"

// Params are the transformation stage settings for one method. Rotations
// are in degrees.
type Params struct {
	RotationX float64
	RotationY float64
	RotationZ float64
	ScaleX    float64
	ScaleY    float64
}

// ParamsFor returns the transform for a concrete method. Auto or any
// undeclared value is a programming error and panics.
func ParamsFor(m Method) Params {
	p := Params{ScaleX: 1, ScaleY: 1}
	switch m {
	case Identity:
	case Rotate90CW:
		p.RotationZ = 90
	case Rotate180:
		p.RotationZ = 180
	case Rotate90CCW:
		p.RotationZ = 270
	case FlipHorizontal:
		p.ScaleX = -1
	case FlipDiagonalB:
		p.ScaleX, p.RotationZ = -1, 90
	case FlipVertical:
		p.ScaleX, p.RotationZ = -1, 180
	case FlipDiagonalA:
		p.ScaleX, p.RotationZ = -1, 270
	default:
		panic(fmt.Sprintf("orientation: no transform for method %v", m))
	}
	return p
}

// Properties returns the stage property writes for p, in the order they are
// applied: every axis is reset before the method's values are set.
func (p Params) Properties() []Property {
	return []Property{
		{Name: "rotation-x", Value: p.RotationX},
		{Name: "rotation-y", Value: p.RotationY},
		{Name: "rotation-z", Value: p.RotationZ},
		{Name: "scale-x", Value: p.ScaleX},
		{Name: "scale-y", Value: p.ScaleY},
	}
}

// Property is a single named float property write.
type Property struct {
	Name  string
	Value float64
}
