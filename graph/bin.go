package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Bin is a container of elements that exposes selected inner pads through
// ghost pads.
type Bin struct {
	name string

	mu       sync.RWMutex
	elements map[string]Element
	order    []string
	pads     map[string]*Pad
}

// NewBin creates an empty bin.
func NewBin(name string) *Bin {
	return &Bin{
		name:     name,
		elements: make(map[string]Element),
		pads:     make(map[string]*Pad),
	}
}

// Name returns the bin name.
func (b *Bin) Name() string { return b.name }

// Add places elements in the bin. Names must be unique within the bin.
func (b *Bin) Add(elems ...Element) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range elems {
		if _, dup := b.elements[e.Name()]; dup {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateName, e.Name(), b.name)
		}
		b.elements[e.Name()] = e
		b.order = append(b.order, e.Name())
	}
	return nil
}

// Element returns a child by name.
func (b *Bin) Element(name string) (Element, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.elements[name]
	return e, ok
}

// Elements returns the children in insertion order.
func (b *Bin) Elements() []Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Element, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.elements[name])
	}
	return out
}

// LinkMany links the "src" pad of each element to the "sink" pad of the next.
func LinkMany(elems ...Element) error {
	for i := 0; i+1 < len(elems); i++ {
		src := elems[i].StaticPad("src")
		sink := elems[i+1].StaticPad("sink")
		if src == nil || sink == nil {
			return fmt.Errorf("%w: %s -> %s: missing pad", ErrLinkFailed, elems[i].Name(), elems[i+1].Name())
		}
		if err := src.Link(sink); err != nil {
			return err
		}
	}
	return nil
}

// AddGhostPad exposes target under name.
func (b *Bin) AddGhostPad(name string, target *Pad) (*Pad, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.pads[name]; dup {
		return nil, fmt.Errorf("%w: %s already has pad %q", ErrLinkFailed, b.name, name)
	}
	g, err := NewGhostPad(name, target)
	if err != nil {
		return nil, err
	}
	g.setParent(b.name)
	b.pads[name] = g
	return g, nil
}

// StaticPad returns a ghost pad by name, or nil.
func (b *Bin) StaticPad(name string) *Pad {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pads[name]
}

// Pads lists the ghost pad names, sorted.
func (b *Bin) Pads() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.pads))
	for name := range b.pads {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
