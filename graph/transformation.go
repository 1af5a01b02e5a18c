package graph

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
)

// FactoryTransformation is the factory name of Transformation.
const FactoryTransformation = "gltransformation"

// GLTemplate is the format family handled by GL video stages: RGBA 2D
// textures of any size and frame rate.
const GLTemplate = "video/x-raw(memory:GLMemory), format=(string)RGBA, " +
	"width=(int)[ 1, 2147483647 ], height=(int)[ 1, 2147483647 ], " +
	"framerate=(fraction)[ 0/1, 2147483647/1 ], texture-target=(string)2D"

var transformationProps = map[string]float64{
	"rotation-x":    0,
	"rotation-y":    0,
	"rotation-z":    0,
	"scale-x":       1,
	"scale-y":       1,
	"translation-x": 0,
	"translation-y": 0,
	"translation-z": 0,
	"fov":           90,
}

// Prop is one property write in a batch.
type Prop struct {
	Name  string
	Value any
}

// Transformation models a GPU 3D transform stage. It accepts anything in
// GLTemplate. When its z rotation is a quarter turn the announced output
// has width and height exchanged and the pixel aspect ratio inverted.
type Transformation struct {
	element

	mu       sync.RWMutex
	ortho    bool
	values   map[string]float64
	input    caps.Caps
	hasInput bool
	updates  int
	template caps.Caps

	sink *Pad
	src  *Pad
}

// NewTransformation creates a transformation element.
func NewTransformation(name string) *Transformation {
	t := &Transformation{
		values:   make(map[string]float64, len(transformationProps)),
		template: caps.MustParse(GLTemplate),
	}
	for k, v := range transformationProps {
		t.values[k] = v
	}
	t.sink = NewPad("sink", Sink, t.handleEvent, t.handleQuery)
	t.src = NewPad("src", Src, nil, nil)
	t.element = newElement(name, FactoryTransformation, t.sink, t.src)
	return t
}

// Template returns the pad template caps (same on both pads).
func (t *Transformation) Template() caps.Caps { return t.template.Copy() }

// Updates counts the SetProperties batches applied so far.
func (t *Transformation) Updates() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updates
}

// Ortho reports whether orthographic projection is enabled.
func (t *Transformation) Ortho() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ortho
}

// Value returns a float property.
func (t *Transformation) Value(name string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[name]
}

// SetProperty sets "ortho" (bool) or one of the float properties.
func (t *Transformation) SetProperty(name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setLocked(name, value)
}

func (t *Transformation) setLocked(name string, value any) error {
	if name == "ortho" {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s.ortho wants bool, got %T", ErrPropertyType, t.name, value)
		}
		t.ortho = b
		return nil
	}
	if _, ok := t.values[name]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrNoProperty, t.name, name)
	}
	switch v := value.(type) {
	case float64:
		t.values[name] = v
	case float32:
		t.values[name] = float64(v)
	case int:
		t.values[name] = float64(v)
	default:
		return fmt.Errorf("%w: %s.%s wants a number, got %T", ErrPropertyType, t.name, name, value)
	}
	return nil
}

// Property reads "ortho" or a float property.
func (t *Transformation) Property(name string) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if name == "ortho" {
		return t.ortho, nil
	}
	v, ok := t.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoProperty, t.name, name)
	}
	return v, nil
}

// SetProperties applies a batch of writes as one update. When a format has
// already been committed, the output format is announced again so that
// downstream follows the new geometry.
func (t *Transformation) SetProperties(props ...Prop) error {
	t.mu.Lock()
	for _, p := range props {
		if err := t.setLocked(p.Name, p.Value); err != nil {
			t.mu.Unlock()
			return err
		}
	}
	t.updates++
	input, hasInput := t.input.Copy(), t.hasInput
	t.mu.Unlock()

	if hasInput && !t.announce(input) {
		slog.Warn("graph: transformation could not renegotiate after update",
			"element", t.name,
			"input", input.String(),
		)
	}
	return nil
}

// outputFor derives the output format for a committed input format.
func (t *Transformation) outputFor(in caps.Caps) caps.Caps {
	t.mu.RLock()
	quarter := math.Mod(math.Abs(t.values["rotation-z"]), 180) == 90
	t.mu.RUnlock()
	if !quarter {
		return in.Copy()
	}
	return in.Map(func(s caps.Structure) caps.Structure {
		w, okW := s.Int("width")
		h, okH := s.Int("height")
		if okW && okH {
			s.Set("width", caps.Int(h))
			s.Set("height", caps.Int(w))
		}
		if par, ok := s.Fraction("pixel-aspect-ratio"); ok && !par.IsOne() {
			s.Set("pixel-aspect-ratio", par.Invert())
		}
		return s
	})
}

func (t *Transformation) announce(input caps.Caps) bool {
	out := t.outputFor(input)
	if !t.src.PushEvent(NewCapsEvent(out)) {
		slog.Debug("graph: transformation output refused downstream",
			"element", t.name,
			"caps", out.String(),
		)
		return false
	}
	return true
}

func (t *Transformation) handleEvent(_ *Pad, e *Event) bool {
	if e.Kind != EventCaps {
		return t.src.PushEvent(e)
	}
	if !e.Caps.IsFixed() || !t.template.CanIntersect(e.Caps) {
		slog.Debug("graph: transformation refused caps", "element", t.name, "caps", e.Caps.String())
		return false
	}
	t.mu.Lock()
	t.input, t.hasInput = e.Caps.Copy(), true
	t.mu.Unlock()
	return t.announce(e.Caps)
}

func (t *Transformation) handleQuery(_ *Pad, q *Query) bool {
	switch q.Kind {
	case QueryCaps:
		result := t.template.Copy()
		down := NewCapsQuery()
		if t.src.PeerQuery(down) && down.Result.IsEmpty() {
			result = caps.Caps{}
		}
		q.Result = q.Filtered(result)
		return true
	case QueryAcceptCaps:
		q.Accepted = t.template.CanIntersect(q.Caps)
		return true
	}
	return t.src.PeerQuery(q)
}
