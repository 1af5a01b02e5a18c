// Package graph is a small in-memory model of a media pipeline: elements
// with sink/src pads, ordered pad probes, ghost pads, bins and a factory
// registry. It implements enough caps negotiation (caps and accept-caps
// queries, caps events) to compose and exercise filter sub-graphs without a
// media framework.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

var (
	// ErrNoFactory is returned when a factory name is not registered
	ErrNoFactory = errors.New("graph: no such element factory")
	// ErrLinkFailed is returned when pads cannot be linked
	ErrLinkFailed = errors.New("graph: link failed")
	// ErrNoProperty is returned for unknown property names
	ErrNoProperty = errors.New("graph: no such property")
	// ErrPropertyType is returned when a property value has the wrong type
	ErrPropertyType = errors.New("graph: wrong property type")
	// ErrDuplicateName is returned when a bin already holds an element of that name
	ErrDuplicateName = errors.New("graph: duplicate element name")
)

// Element is a processing stage with named static pads and properties.
type Element interface {
	Name() string
	Factory() string
	StaticPad(name string) *Pad
	SetProperty(name string, value any) error
	Property(name string) (any, error)
}

// Factory creates an element with the given instance name.
type Factory func(name string) (Element, error)

// Registry maps factory names to constructors.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	counter   atomic.Uint64
}

// NewRegistry returns a registry holding the stock elements: capsfilter,
// gltransformation, fakesrc and fakesink.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(FactoryCapsFilter, func(name string) (Element, error) { return NewCapsFilter(name), nil })
	r.Register(FactoryTransformation, func(name string) (Element, error) { return NewTransformation(name), nil })
	r.Register(FactorySource, func(name string) (Element, error) { return NewFakeSrc(name), nil })
	r.Register(FactorySink, func(name string) (Element, error) { return NewFakeSink(name), nil })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(factory string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory] = fn
}

// Unregister removes a factory.
func (r *Registry) Unregister(factory string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, factory)
}

// Factories lists the registered factory names, sorted.
func (r *Registry) Factories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Make instantiates an element. An empty name is replaced by
// "<factory><n>".
func (r *Registry) Make(factory, name string) (Element, error) {
	r.mu.RLock()
	fn, ok := r.factories[factory]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoFactory, factory)
	}
	if name == "" {
		name = fmt.Sprintf("%s%d", factory, r.counter.Add(1)-1)
	}
	e, err := fn(name)
	if err != nil {
		return nil, fmt.Errorf("graph: create %s: %w", factory, err)
	}
	return e, nil
}

// element carries the parts shared by every stock element.
type element struct {
	name    string
	factory string
	pads    map[string]*Pad
}

func newElement(name, factory string, pads ...*Pad) element {
	e := element{name: name, factory: factory, pads: make(map[string]*Pad, len(pads))}
	for _, p := range pads {
		p.setParent(name)
		e.pads[p.Name()] = p
	}
	return e
}

func (e *element) Name() string    { return e.name }
func (e *element) Factory() string { return e.factory }

func (e *element) StaticPad(name string) *Pad { return e.pads[name] }
