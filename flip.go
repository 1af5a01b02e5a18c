package videoflip

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/graph"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/negotiate"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// Filter is the flip element on the in-memory pipeline model. It satisfies
// graph.Element, so it links like any other stage.
type Filter struct {
	id       string
	name     string
	registry *graph.Registry

	bin    *graph.Bin
	stages stages
	sink   *graph.Pad
	src    *graph.Pad

	ic  *negotiate.Interceptor
	err error
}

// Option configures a Filter.
type Option func(*options)

type options struct {
	name     string
	method   Method
	registry *graph.Registry
}

// WithName sets the element name. The default is FactoryName followed by
// the first characters of the instance id.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMethod sets the initial method.
func WithMethod(m Method) Option {
	return func(o *options) { o.method = m }
}

// WithRegistry makes the filter create its stages from r instead of the
// stock registry.
func WithRegistry(r *graph.Registry) Option {
	return func(o *options) { o.registry = r }
}

var defaultRegistry = graph.NewRegistry()

// New builds a flip filter. It never fails: if the internal sub-graph cannot
// be built the filter is returned inert, without pads, and Err reports why.
func New(opts ...Option) *Filter {
	o := options{method: DefaultMethod, registry: defaultRegistry}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New().String()
	name := o.name
	if name == "" {
		name = FactoryName + id[:8]
	}

	f := &Filter{id: id, name: name, registry: o.registry}
	f.ic = negotiate.NewInterceptor(&f.stages, id)

	if err := f.build(); err != nil {
		f.err = fmt.Errorf("%w: %w", ErrConstruction, err)
		slog.Warn("videoflip: failed to build sub-graph, filter is inert",
			"id", id,
			"name", name,
			"error", err,
		)
	} else if err := f.ic.Sync(); err != nil {
		slog.Warn("videoflip: failed to initialise transformation", "id", id, "error", err)
	}

	if o.method != DefaultMethod {
		if err := f.SetMethod(o.method); err != nil {
			slog.Warn("videoflip: ignoring initial method", "id", id, "method", int(o.method), "error", err)
		}
	}

	slog.Info("videoflip: filter created",
		"id", id,
		"name", name,
		"method", f.Method().String(),
		"operational", f.Operational(),
	)
	return f
}

// build creates input pin, transformation and output pin, links them and
// exposes the outer pads. Nothing is published on f until every step
// succeeded.
func (f *Filter) build() error {
	in, err := f.registry.Make(graph.FactoryCapsFilter, f.name+"-input")
	if err != nil {
		return fmt.Errorf("input pin: %w", err)
	}
	tr, err := f.registry.Make(graph.FactoryTransformation, f.name+"-transformation")
	if err != nil {
		return fmt.Errorf("transformation: %w", err)
	}
	if err := tr.SetProperty("ortho", true); err != nil {
		return fmt.Errorf("transformation: %w", err)
	}
	out, err := f.registry.Make(graph.FactoryCapsFilter, f.name+"-output")
	if err != nil {
		return fmt.Errorf("output pin: %w", err)
	}

	bin := graph.NewBin(f.name)
	if err := bin.Add(in, tr, out); err != nil {
		return err
	}
	if err := graph.LinkMany(in, tr, out); err != nil {
		return err
	}

	trSrc := tr.StaticPad("src")
	if trSrc == nil {
		return fmt.Errorf("%w: %s has no src pad", graph.ErrLinkFailed, tr.Name())
	}
	sink, err := bin.AddGhostPad("sink", in.StaticPad("sink"))
	if err != nil {
		return err
	}
	src, err := bin.AddGhostPad("src", out.StaticPad("src"))
	if err != nil {
		return err
	}

	sink.AddProbe(graph.ProbeEventDownstream, f.inputEventProbe)
	sink.AddProbe(graph.ProbeQueryDownstream, f.inputQueryProbe)
	trSrc.AddProbe(graph.ProbeQueryDownstream, f.transformOutputProbe)

	f.bin = bin
	f.stages = stages{input: in, transform: tr, output: out}
	f.sink, f.src = sink, src
	return nil
}

func (f *Filter) inputEventProbe(_ *graph.Pad, info *graph.ProbeInfo) graph.ProbeReturn {
	e := info.Event
	switch e.Kind {
	case graph.EventCaps:
		return probeReturn(f.ic.OnFormatCommit(e.Caps))
	case graph.EventTag:
		if v, ok := e.Tag(orientation.TagImageOrientation); ok {
			return probeReturn(f.ic.OnOrientationTag(v))
		}
	}
	return graph.ProbePass
}

func (f *Filter) inputQueryProbe(_ *graph.Pad, info *graph.ProbeInfo) graph.ProbeReturn {
	q := info.Query
	transformSink := f.stages.transform.StaticPad("sink")
	return probeReturn(f.ic.OnInputQuery(queryKind(q.Kind), func() bool {
		return transformSink.Query(q)
	}))
}

func (f *Filter) transformOutputProbe(_ *graph.Pad, info *graph.ProbeInfo) graph.ProbeReturn {
	q := info.Query
	return probeReturn(f.ic.OnTransformOutputQuery(queryKind(q.Kind), func() bool {
		peer := f.src.Peer()
		if peer == nil {
			return false
		}
		return peer.Query(q)
	}))
}

func probeReturn(v negotiate.Verdict) graph.ProbeReturn {
	switch v {
	case negotiate.Handled:
		return graph.ProbeHandled
	case negotiate.Rejected:
		return graph.ProbeDrop
	default:
		return graph.ProbePass
	}
}

func queryKind(k graph.QueryKind) negotiate.QueryKind {
	switch k {
	case graph.QueryCaps:
		return negotiate.QueryCaps
	case graph.QueryAcceptCaps:
		return negotiate.QueryAcceptCaps
	default:
		return negotiate.QueryOther
	}
}

// ID returns the instance id used in log records.
func (f *Filter) ID() string { return f.id }

// Name returns the element name.
func (f *Filter) Name() string { return f.name }

// Factory returns FactoryName.
func (f *Filter) Factory() string { return FactoryName }

// Metadata returns ElementMetadata.
func (f *Filter) Metadata() Metadata { return ElementMetadata }

// StaticPad returns the "sink" or "src" boundary pad, nil when inert.
func (f *Filter) StaticPad(name string) *graph.Pad {
	switch name {
	case "sink":
		return f.sink
	case "src":
		return f.src
	}
	return nil
}

// SinkPad returns the input boundary pad, nil when inert.
func (f *Filter) SinkPad() *graph.Pad { return f.sink }

// SrcPad returns the output boundary pad, nil when inert.
func (f *Filter) SrcPad() *graph.Pad { return f.src }

// Err reports why the filter is inert, or nil.
func (f *Filter) Err() error { return f.err }

// Operational reports whether the sub-graph was built.
func (f *Filter) Operational() bool { return f.err == nil }

// SetMethod selects the flip method. The transformation is updated only
// when the method in effect changes.
func (f *Filter) SetMethod(m Method) error {
	if err := f.ic.SetMethod(m); err != nil {
		return fmt.Errorf("videoflip: %w", err)
	}
	return nil
}

// Method returns the selected method (possibly MethodAutomatic).
func (f *Filter) Method() Method { return f.ic.Method() }

// ActiveMethod returns the method in effect; never MethodAutomatic.
func (f *Filter) ActiveMethod() Method { return f.ic.Active() }

// State returns the selected, tag-derived and active methods.
func (f *Filter) State() State { return f.ic.Snapshot() }

// stages adapts the three inner elements to negotiate.Target.
type stages struct {
	input     graph.Element
	transform graph.Element
	output    graph.Element
}

type batchSetter interface {
	SetProperties(props ...graph.Prop) error
}

type templated interface {
	Template() caps.Caps
}

func (s *stages) SetInputFormat(c caps.Caps) error {
	if s.input == nil {
		return ErrConstruction
	}
	return s.input.SetProperty("caps", c)
}

func (s *stages) SetOutputFormat(c caps.Caps) error {
	if s.output == nil {
		return ErrConstruction
	}
	return s.output.SetProperty("caps", c)
}

func (s *stages) TransformOutputTemplate() caps.Caps {
	if t, ok := s.transform.(templated); ok {
		return t.Template()
	}
	return caps.MustParse(PadTemplate)
}

func (s *stages) ApplyTransform(p orientation.Params) error {
	if s.transform == nil {
		return ErrConstruction
	}
	props := p.Properties()
	if b, ok := s.transform.(batchSetter); ok {
		batch := make([]graph.Prop, 0, len(props))
		for _, prop := range props {
			batch = append(batch, graph.Prop{Name: prop.Name, Value: prop.Value})
		}
		return b.SetProperties(batch...)
	}
	for _, prop := range props {
		if err := s.transform.SetProperty(prop.Name, prop.Value); err != nil {
			return err
		}
	}
	return nil
}
