package graph

import (
	"fmt"
	"log/slog"
	"sync"
)

// Direction is the data flow direction of a pad.
type Direction int

const (
	// Sink pads receive data
	Sink Direction = iota
	// Src pads produce data
	Src
)

// String returns "sink" or "src".
func (d Direction) String() string {
	if d == Src {
		return "src"
	}
	return "sink"
}

// ProbeType selects the traffic a probe observes.
type ProbeType uint

const (
	// ProbeEventDownstream observes downstream events
	ProbeEventDownstream ProbeType = 1 << iota
	// ProbeQueryDownstream observes downstream queries
	ProbeQueryDownstream
)

// ProbeReturn tells the pad what to do with the observed item.
type ProbeReturn int

const (
	// ProbePass lets the item continue (and runs the remaining probes)
	ProbePass ProbeReturn = iota
	// ProbeHandled stops processing and reports success
	ProbeHandled
	// ProbeDrop stops processing and reports failure
	ProbeDrop
)

// String returns the probe return name.
func (r ProbeReturn) String() string {
	switch r {
	case ProbePass:
		return "pass"
	case ProbeHandled:
		return "handled"
	case ProbeDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// ProbeInfo describes the item a probe is called for. Exactly one of Event
// and Query is set.
type ProbeInfo struct {
	Type  ProbeType
	Event *Event
	Query *Query
}

// ProbeFunc is called for every matching item passing through the pad.
type ProbeFunc func(pad *Pad, info *ProbeInfo) ProbeReturn

type probe struct {
	id   uint64
	mask ProbeType
	fn   ProbeFunc
}

// EventHandler processes an event that reached the pad's element.
type EventHandler func(pad *Pad, event *Event) bool

// QueryHandler answers a query that reached the pad's element.
type QueryHandler func(pad *Pad, query *Query) bool

// Pad is a connection point of an element.
//
// Events and queries pass through the pad's probes in installation order
// before reaching the element handler, the ghost target or the peer.
// Probes run without any pad lock held, so they may query other pads.
type Pad struct {
	name string
	dir  Direction

	mu      sync.RWMutex
	parent  string
	probes  []probe
	probeID uint64
	peer    *Pad
	ghost   *Pad
	target  *Pad

	eventFn EventHandler
	queryFn QueryHandler
}

// NewPad creates an unlinked pad. Handlers may be nil.
func NewPad(name string, dir Direction, eventFn EventHandler, queryFn QueryHandler) *Pad {
	return &Pad{name: name, dir: dir, eventFn: eventFn, queryFn: queryFn}
}

// Name returns the pad name.
func (p *Pad) Name() string { return p.name }

// Direction returns the pad direction.
func (p *Pad) Direction() Direction { return p.dir }

// Parent returns the name of the owning element or bin.
func (p *Pad) Parent() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.parent
}

func (p *Pad) setParent(name string) {
	p.mu.Lock()
	p.parent = name
	p.mu.Unlock()
}

// String returns "parent:name".
func (p *Pad) String() string {
	return fmt.Sprintf("%s:%s", p.Parent(), p.name)
}

// Peer returns the linked pad, if any.
func (p *Pad) Peer() *Pad {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.peer
}

// Target returns the pad a ghost pad proxies, nil for ordinary pads.
func (p *Pad) Target() *Pad {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.target
}

// IsLinked reports whether the pad has a peer.
func (p *Pad) IsLinked() bool { return p.Peer() != nil }

// Link connects a src pad to a sink pad.
func (p *Pad) Link(sink *Pad) error {
	if p.dir != Src || sink.dir != Sink {
		return fmt.Errorf("%w: %s (%s) -> %s (%s): wrong directions",
			ErrLinkFailed, p, p.dir, sink, sink.dir)
	}
	if p == sink {
		return fmt.Errorf("%w: pad linked to itself", ErrLinkFailed)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if p.peer != nil || sink.peer != nil {
		return fmt.Errorf("%w: %s or %s already linked", ErrLinkFailed, p.name, sink.name)
	}
	p.peer = sink
	sink.peer = p
	return nil
}

// Unlink disconnects the pad from its peer.
func (p *Pad) Unlink() {
	peer := p.Peer()
	if peer == nil {
		return
	}
	p.mu.Lock()
	p.peer = nil
	p.mu.Unlock()
	peer.mu.Lock()
	if peer.peer == p {
		peer.peer = nil
	}
	peer.mu.Unlock()
}

// AddProbe installs fn for the traffic selected by mask and returns an id
// for RemoveProbe.
func (p *Pad) AddProbe(mask ProbeType, fn ProbeFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probeID++
	p.probes = append(p.probes, probe{id: p.probeID, mask: mask, fn: fn})
	return p.probeID
}

// RemoveProbe uninstalls a probe.
func (p *Pad) RemoveProbe(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, pr := range p.probes {
		if pr.id == id {
			p.probes = append(p.probes[:i:i], p.probes[i+1:]...)
			return
		}
	}
}

// runProbes returns the first non-pass verdict, or ProbePass.
func (p *Pad) runProbes(info *ProbeInfo) ProbeReturn {
	p.mu.RLock()
	probes := append([]probe(nil), p.probes...)
	p.mu.RUnlock()

	for _, pr := range probes {
		if pr.mask&info.Type == 0 {
			continue
		}
		if ret := pr.fn(p, info); ret != ProbePass {
			slog.Debug("graph: probe intercepted",
				"pad", p.String(),
				"probe", pr.id,
				"return", ret.String(),
			)
			return ret
		}
	}
	return ProbePass
}

func verdict(ret ProbeReturn) bool {
	return ret == ProbeHandled
}

// SendEvent delivers an event to this sink pad.
func (p *Pad) SendEvent(e *Event) bool {
	if ret := p.runProbes(&ProbeInfo{Type: ProbeEventDownstream, Event: e}); ret != ProbePass {
		return verdict(ret)
	}
	if t := p.Target(); t != nil {
		return t.SendEvent(e)
	}
	if p.eventFn == nil {
		return false
	}
	return p.eventFn(p, e)
}

// PushEvent sends an event out of this src pad to its peer.
func (p *Pad) PushEvent(e *Event) bool {
	if ret := p.runProbes(&ProbeInfo{Type: ProbeEventDownstream, Event: e}); ret != ProbePass {
		return verdict(ret)
	}
	p.mu.RLock()
	ghost, peer := p.ghost, p.peer
	p.mu.RUnlock()
	if ghost != nil {
		return ghost.PushEvent(e)
	}
	if peer == nil {
		return false
	}
	return peer.SendEvent(e)
}

// Query asks this pad (or its ghost target, or its element) to answer q.
func (p *Pad) Query(q *Query) bool {
	if p.dir == Sink {
		if ret := p.runProbes(&ProbeInfo{Type: ProbeQueryDownstream, Query: q}); ret != ProbePass {
			return verdict(ret)
		}
	}
	if t := p.Target(); t != nil {
		return t.Query(q)
	}
	if p.queryFn == nil {
		return false
	}
	return p.queryFn(p, q)
}

// PeerQuery sends q out of this pad to whatever is linked to it. For a ghost
// target the query leaves through the ghost pad.
func (p *Pad) PeerQuery(q *Query) bool {
	if p.dir == Src {
		if ret := p.runProbes(&ProbeInfo{Type: ProbeQueryDownstream, Query: q}); ret != ProbePass {
			return verdict(ret)
		}
	}
	p.mu.RLock()
	ghost, peer := p.ghost, p.peer
	p.mu.RUnlock()
	if ghost != nil {
		return ghost.PeerQuery(q)
	}
	if peer == nil {
		return false
	}
	return peer.Query(q)
}

// NewGhostPad creates a pad that exposes target outside its bin.
func NewGhostPad(name string, target *Pad) (*Pad, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: ghost pad %q has no target", ErrLinkFailed, name)
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.ghost != nil {
		return nil, fmt.Errorf("%w: %s already has a ghost pad", ErrLinkFailed, target.name)
	}
	if target.peer != nil {
		return nil, fmt.Errorf("%w: ghost target %s is linked", ErrLinkFailed, target.name)
	}
	g := &Pad{name: name, dir: target.dir, target: target}
	target.ghost = g
	return g, nil
}
