package negotiate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// Verdict is the outcome of a probe decision.
type Verdict int

const (
	// NotIntercepted lets the item continue through the pad
	NotIntercepted Verdict = iota
	// Handled stops the item and reports success
	Handled
	// Rejected stops the item and reports failure
	Rejected
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case NotIntercepted:
		return "not-intercepted"
	case Handled:
		return "handled"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// QueryKind classifies a query for the interceptor.
type QueryKind int

const (
	// QueryOther is any query the interceptor does not touch
	QueryOther QueryKind = iota
	// QueryCaps asks for the supported formats
	QueryCaps
	// QueryAcceptCaps asks whether one format is acceptable
	QueryAcceptCaps
)

// String returns the query kind name.
func (k QueryKind) String() string {
	switch k {
	case QueryCaps:
		return "caps"
	case QueryAcceptCaps:
		return "accept-caps"
	default:
		return "other"
	}
}

// Target is the sub-graph the interceptor drives: two format pins around a
// transform stage.
type Target interface {
	// SetInputFormat fixes the pin in front of the transform stage.
	SetInputFormat(c caps.Caps) error
	// SetOutputFormat fixes the pin behind the transform stage.
	SetOutputFormat(c caps.Caps) error
	// TransformOutputTemplate returns the transform stage's src template.
	TransformOutputTemplate() caps.Caps
	// ApplyTransform writes the transform parameters as one update.
	ApplyTransform(p orientation.Params) error
}

// Interceptor decides what the filter's probes do with events and queries
// and keeps the orientation state.
type Interceptor struct {
	target Target
	id     string
	state  orientation.State

	mu       sync.Mutex
	input    caps.Caps
	hasInput bool

	// applyMu orders pin and parameter writes to the target. It is never
	// held together with the state lock.
	applyMu    sync.Mutex
	lastPushed orientation.Method
	pushed     bool
}

// NewInterceptor creates an interceptor driving target. id is attached to
// every log record.
func NewInterceptor(target Target, id string) *Interceptor {
	return &Interceptor{target: target, id: id}
}

// OnInputQuery handles a query arriving at the input boundary. Caps and
// accept-caps queries skip the input pin and are answered by forward, which
// sends them to the transform stage's sink.
func (i *Interceptor) OnInputQuery(kind QueryKind, forward func() bool) Verdict {
	return i.bypass("input", kind, forward)
}

// OnTransformOutputQuery handles a query leaving the transform stage. Caps
// and accept-caps queries skip the output pin and are answered by forward,
// which sends them to whatever is linked to the filter's output boundary.
func (i *Interceptor) OnTransformOutputQuery(kind QueryKind, forward func() bool) Verdict {
	return i.bypass("transform-output", kind, forward)
}

func (i *Interceptor) bypass(where string, kind QueryKind, forward func() bool) Verdict {
	if kind != QueryCaps && kind != QueryAcceptCaps {
		return NotIntercepted
	}
	v := Rejected
	if forward() {
		v = Handled
	}
	slog.Debug("negotiate: query bypassed pin",
		"id", i.id,
		"at", where,
		"query", kind.String(),
		"verdict", v.String(),
	)
	return v
}

// OnFormatCommit fixes both pins for the committed input format c. The
// event itself keeps flowing.
func (i *Interceptor) OnFormatCommit(c caps.Caps) Verdict {
	i.mu.Lock()
	i.input, i.hasInput = c.Copy(), true
	i.mu.Unlock()

	i.applyMu.Lock()
	defer i.applyMu.Unlock()
	i.pin(c, i.state.Active())
	return NotIntercepted
}

func (i *Interceptor) pin(input caps.Caps, active orientation.Method) {
	output := OutputFormat(active, input, i.target.TransformOutputTemplate())
	if err := i.target.SetInputFormat(input); err != nil {
		slog.Warn("negotiate: failed to set input format", "id", i.id, "error", err)
	}
	if err := i.target.SetOutputFormat(output); err != nil {
		slog.Warn("negotiate: failed to set output format", "id", i.id, "error", err)
	}
	slog.Debug("negotiate: formats pinned",
		"id", i.id,
		"method", active.String(),
		"input", input.String(),
		"output", output.String(),
	)
}

// OnOrientationTag handles the value of an image-orientation tag. Unknown
// values are ignored and leave the previous tag method in place. The event
// itself keeps flowing.
func (i *Interceptor) OnOrientationTag(value string) Verdict {
	m, ok := orientation.FromTag(value)
	if !ok {
		slog.Debug("negotiate: ignoring unknown orientation tag", "id", i.id, "value", value)
		return NotIntercepted
	}
	change, err := i.state.SetTag(m)
	if err != nil {
		slog.Warn("negotiate: orientation tag rejected", "id", i.id, "value", value, "error", err)
		return NotIntercepted
	}
	slog.Debug("negotiate: orientation tag", "id", i.id, "value", value, "method", m.String())
	i.apply(change)
	return NotIntercepted
}

// SetMethod sets the requested method. Transform parameters are written
// only when the active method changes.
func (i *Interceptor) SetMethod(m orientation.Method) error {
	change, err := i.state.SetUser(m)
	if err != nil {
		return err
	}
	i.apply(change)
	return nil
}

// Sync writes the parameters of the current active method unconditionally.
func (i *Interceptor) Sync() error {
	i.applyMu.Lock()
	defer i.applyMu.Unlock()

	active := i.state.Active()
	if err := i.target.ApplyTransform(orientation.ParamsFor(active)); err != nil {
		return fmt.Errorf("negotiate: apply %s: %w", active, err)
	}
	i.lastPushed, i.pushed = active, true
	return nil
}

// Method returns the requested method.
func (i *Interceptor) Method() orientation.Method { return i.state.User() }

// Active returns the method in effect.
func (i *Interceptor) Active() orientation.Method { return i.state.Active() }

// Snapshot returns the orientation state.
func (i *Interceptor) Snapshot() orientation.Snapshot { return i.state.Snapshot() }

// apply runs outside the state lock. Writes to the target are serialised by
// applyMu and always use the active method read under it, so when concurrent
// changes settle the target holds the parameters of the final active method.
func (i *Interceptor) apply(change orientation.Change) {
	if !change.Changed {
		return
	}
	slog.Info("negotiate: active method changed",
		"id", i.id,
		"from", change.Previous.String(),
		"to", change.Active.String(),
	)

	i.applyMu.Lock()
	defer i.applyMu.Unlock()

	active := i.state.Active()
	i.mu.Lock()
	input, hasInput := i.input.Copy(), i.hasInput
	i.mu.Unlock()
	if hasInput {
		i.pin(input, active)
	}

	if i.pushed && i.lastPushed == active {
		return
	}
	if err := i.target.ApplyTransform(orientation.ParamsFor(active)); err != nil {
		slog.Warn("negotiate: failed to apply transform",
			"id", i.id,
			"method", active.String(),
			"error", err,
		)
		return
	}
	i.lastPushed, i.pushed = active, true
}
