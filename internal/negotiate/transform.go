// Package negotiate holds the format negotiation logic of the flip filter,
// independent of the pipeline backend: the orientation-aware caps transform
// and the probe decisions that let capability queries bypass the fixed
// format pins around the transform stage.
package negotiate

import (
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// Direction is the side of the filter the caps come from.
type Direction int

const (
	// FromSink transforms input caps into output caps
	FromSink Direction = iota
	// FromSrc transforms output caps into input caps
	FromSrc
)

// TransformCaps returns the caps seen on the other side of a filter applying
// method m. Every structure carrying fixed integer width and height gets
// them exchanged when m swaps axes, along with an inverted pixel aspect
// ratio unless it is 1/1. Other structures, and every structure for
// non-swapping methods, are copied unchanged.
//
// Axis swaps are their own inverse, so the result does not depend on the
// direction.
func TransformCaps(_ Direction, m orientation.Method, c caps.Caps) caps.Caps {
	if !m.SwapsAxes() {
		return c.Copy()
	}
	return c.Map(func(s caps.Structure) caps.Structure {
		w, okW := s.Int("width")
		h, okH := s.Int("height")
		if !okW || !okH {
			return s
		}
		s.Set("width", caps.Int(h))
		s.Set("height", caps.Int(w))
		if par, ok := s.Fraction("pixel-aspect-ratio"); ok && !par.IsOne() {
			s.Set("pixel-aspect-ratio", par.Invert())
		}
		return s
	})
}

// OutputFormat is the format the output pin is fixed to after the input
// committed to c: the transformed caps, followed by the transform stage's
// own template so that downstream may still override the geometry.
func OutputFormat(m orientation.Method, c, template caps.Caps) caps.Caps {
	return TransformCaps(FromSink, m, c).Union(template)
}
