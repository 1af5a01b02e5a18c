package graph

import (
	"maps"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
)

// EventKind identifies a downstream event.
type EventKind int

const (
	// EventCaps commits the format of the data that follows
	EventCaps EventKind = iota
	// EventTag carries stream metadata
	EventTag
	// EventEOS marks the end of the stream
	EventEOS
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventCaps:
		return "caps"
	case EventTag:
		return "tag"
	case EventEOS:
		return "eos"
	default:
		return "unknown"
	}
}

// Event travels downstream through pads.
type Event struct {
	Kind EventKind
	Caps caps.Caps
	Tags map[string]string
}

// NewCapsEvent creates a format-commit event. The caps are copied.
func NewCapsEvent(c caps.Caps) *Event {
	return &Event{Kind: EventCaps, Caps: c.Copy()}
}

// NewTagEvent creates a tag event. The map is copied.
func NewTagEvent(tags map[string]string) *Event {
	return &Event{Kind: EventTag, Tags: maps.Clone(tags)}
}

// NewEOSEvent creates an end-of-stream event.
func NewEOSEvent() *Event {
	return &Event{Kind: EventEOS}
}

// Tag returns a tag value.
func (e *Event) Tag(name string) (string, bool) {
	v, ok := e.Tags[name]
	return v, ok
}

// QueryKind identifies a query.
type QueryKind int

const (
	// QueryCaps asks which formats a pad can handle
	QueryCaps QueryKind = iota
	// QueryAcceptCaps asks whether a pad accepts one format
	QueryAcceptCaps
	// QueryLatency is answered by no stage in this package; it exists so that
	// probes can be shown to ignore unrelated queries
	QueryLatency
)

// String returns the query name.
func (k QueryKind) String() string {
	switch k {
	case QueryCaps:
		return "caps"
	case QueryAcceptCaps:
		return "accept-caps"
	case QueryLatency:
		return "latency"
	default:
		return "unknown"
	}
}

// Query is sent to a pad and answered in place.
//
// For QueryCaps, Filter restricts the answer when HasFilter is set and Result
// holds the answer. An EMPTY filter is a filter: the answer is EMPTY. For
// QueryAcceptCaps, Caps is the candidate and Accepted holds the answer.
type Query struct {
	Kind      QueryKind
	Filter    caps.Caps
	HasFilter bool
	Caps      caps.Caps
	Result    caps.Caps
	Accepted  bool
}

// NewCapsQuery creates an unfiltered caps query.
func NewCapsQuery() *Query {
	return &Query{Kind: QueryCaps}
}

// NewFilteredCapsQuery creates a caps query restricted by filter.
func NewFilteredCapsQuery(filter caps.Caps) *Query {
	return &Query{Kind: QueryCaps, Filter: filter.Copy(), HasFilter: true}
}

// Downstream returns a fresh caps query carrying the same filter, for an
// element that asks its peer before answering q.
func (q *Query) Downstream() *Query {
	if q.HasFilter {
		return NewFilteredCapsQuery(q.Filter)
	}
	return NewCapsQuery()
}

// NewAcceptCapsQuery asks whether c is acceptable.
func NewAcceptCapsQuery(c caps.Caps) *Query {
	return &Query{Kind: QueryAcceptCaps, Caps: c.Copy()}
}

// Filtered restricts c by the query filter, if one is set.
func (q *Query) Filtered(c caps.Caps) caps.Caps {
	if !q.HasFilter {
		return c.Copy()
	}
	return q.Filter.Intersect(c)
}
