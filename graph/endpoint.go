package graph

import (
	"fmt"
	"sync"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
)

const (
	// FactorySource is the factory name of FakeSrc.
	FactorySource = "fakesrc"
	// FactorySink is the factory name of FakeSink.
	FactorySink = "fakesink"
)

// FakeSrc is a stage with a single src pad driven by the caller.
type FakeSrc struct {
	element
	src *Pad
}

// NewFakeSrc creates a source element.
func NewFakeSrc(name string) *FakeSrc {
	s := &FakeSrc{src: NewPad("src", Src, nil, nil)}
	s.element = newElement(name, FactorySource, s.src)
	return s
}

// Push sends an event downstream.
func (s *FakeSrc) Push(e *Event) bool { return s.src.PushEvent(e) }

// QueryDownstream sends a query to the linked element.
func (s *FakeSrc) QueryDownstream(q *Query) bool { return s.src.PeerQuery(q) }

// SetProperty always fails; sources have no properties.
func (s *FakeSrc) SetProperty(name string, _ any) error {
	return fmt.Errorf("%w: %s.%s", ErrNoProperty, s.name, name)
}

// Property always fails; sources have no properties.
func (s *FakeSrc) Property(name string) (any, error) {
	return nil, fmt.Errorf("%w: %s.%s", ErrNoProperty, s.name, name)
}

// FakeSink terminates a pipeline and records what reached it. Its "caps"
// property restricts accepted formats (ANY by default).
type FakeSink struct {
	element

	mu      sync.RWMutex
	accept  caps.Caps
	current caps.Caps
	tags    map[string]string
	events  []EventKind
	sinkPad *Pad
}

// NewFakeSink creates a sink element.
func NewFakeSink(name string) *FakeSink {
	s := &FakeSink{accept: caps.Any(), tags: make(map[string]string)}
	s.sinkPad = NewPad("sink", Sink, s.handleEvent, s.handleQuery)
	s.element = newElement(name, FactorySink, s.sinkPad)
	return s
}

// CurrentCaps returns the last committed format.
func (s *FakeSink) CurrentCaps() caps.Caps {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Copy()
}

// Tags returns a copy of every tag received.
func (s *FakeSink) Tags() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.tags))
	for k, v := range s.tags {
		out[k] = v
	}
	return out
}

// Events returns the kinds of events received, in order.
func (s *FakeSink) Events() []EventKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EventKind(nil), s.events...)
}

// SetProperty sets "caps" as caps.Caps or caps text.
func (s *FakeSink) SetProperty(name string, value any) error {
	if name != "caps" {
		return fmt.Errorf("%w: %s.%s", ErrNoProperty, s.name, name)
	}
	var c caps.Caps
	switch v := value.(type) {
	case caps.Caps:
		c = v.Copy()
	case string:
		parsed, err := caps.Parse(v)
		if err != nil {
			return fmt.Errorf("graph: %s.caps: %w", s.name, err)
		}
		c = parsed
	default:
		return fmt.Errorf("%w: %s.caps wants caps, got %T", ErrPropertyType, s.name, value)
	}
	s.mu.Lock()
	s.accept = c
	s.mu.Unlock()
	return nil
}

// Property reads "caps".
func (s *FakeSink) Property(name string) (any, error) {
	if name != "caps" {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoProperty, s.name, name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accept.Copy(), nil
}

func (s *FakeSink) handleEvent(_ *Pad, e *Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e.Kind {
	case EventCaps:
		if !s.accept.CanIntersect(e.Caps) {
			return false
		}
		s.current = e.Caps.Copy()
	case EventTag:
		for k, v := range e.Tags {
			s.tags[k] = v
		}
	}
	s.events = append(s.events, e.Kind)
	return true
}

func (s *FakeSink) handleQuery(_ *Pad, q *Query) bool {
	s.mu.RLock()
	accept := s.accept.Copy()
	s.mu.RUnlock()
	switch q.Kind {
	case QueryCaps:
		q.Result = q.Filtered(accept)
		return true
	case QueryAcceptCaps:
		q.Accepted = accept.CanIntersect(q.Caps)
		return true
	}
	return false
}
