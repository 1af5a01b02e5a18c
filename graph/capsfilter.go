package graph

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
)

// FactoryCapsFilter is the factory name of CapsFilter.
const FactoryCapsFilter = "capsfilter"

// CapsFilter passes data through unchanged while restricting the format to
// its "caps" property. ANY (the default) restricts nothing.
type CapsFilter struct {
	element

	mu     sync.RWMutex
	filter caps.Caps

	sink *Pad
	src  *Pad
}

// NewCapsFilter creates a capsfilter element.
func NewCapsFilter(name string) *CapsFilter {
	f := &CapsFilter{filter: caps.Any()}
	f.sink = NewPad("sink", Sink, f.handleEvent, f.handleQuery)
	f.src = NewPad("src", Src, nil, nil)
	f.element = newElement(name, FactoryCapsFilter, f.sink, f.src)
	return f
}

// Caps returns the current restriction.
func (f *CapsFilter) Caps() caps.Caps {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.Copy()
}

// SetCaps replaces the restriction.
func (f *CapsFilter) SetCaps(c caps.Caps) {
	f.mu.Lock()
	f.filter = c.Copy()
	f.mu.Unlock()
	slog.Debug("graph: capsfilter caps set", "element", f.name, "caps", c.String())
}

// SetProperty accepts "caps" as caps.Caps or caps text.
func (f *CapsFilter) SetProperty(name string, value any) error {
	if name != "caps" {
		return fmt.Errorf("%w: %s.%s", ErrNoProperty, f.name, name)
	}
	switch v := value.(type) {
	case caps.Caps:
		f.SetCaps(v)
	case string:
		c, err := caps.Parse(v)
		if err != nil {
			return fmt.Errorf("graph: %s.caps: %w", f.name, err)
		}
		f.SetCaps(c)
	default:
		return fmt.Errorf("%w: %s.caps wants caps, got %T", ErrPropertyType, f.name, value)
	}
	return nil
}

// Property reads "caps".
func (f *CapsFilter) Property(name string) (any, error) {
	if name != "caps" {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoProperty, f.name, name)
	}
	return f.Caps(), nil
}

func (f *CapsFilter) handleEvent(_ *Pad, e *Event) bool {
	if e.Kind == EventCaps {
		filter := f.Caps()
		if !filter.CanIntersect(e.Caps) {
			slog.Debug("graph: capsfilter refused caps",
				"element", f.name,
				"caps", e.Caps.String(),
				"filter", filter.String(),
			)
			return false
		}
	}
	return f.src.PushEvent(e)
}

func (f *CapsFilter) handleQuery(_ *Pad, q *Query) bool {
	filter := f.Caps()
	switch q.Kind {
	case QueryCaps:
		down := q.Downstream()
		result := filter
		if f.src.PeerQuery(down) {
			result = filter.Intersect(down.Result)
		}
		q.Result = q.Filtered(result)
		return true
	case QueryAcceptCaps:
		q.Accepted = filter.CanIntersect(q.Caps)
		return true
	}
	return f.src.PeerQuery(q)
}
