package videoflip

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/glbin"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/negotiate"
)

// GLFilter is the flip element built from GStreamer elements
// (capsfilter ! gltransformation ! capsfilter). It negotiates exactly like
// Filter. Like Filter it never fails construction: when GStreamer or its
// GL plugins are missing, the filter is inert and Err reports why.
type GLFilter struct {
	id   string
	name string
	bin  *glbin.Bin
	ic   *negotiate.Interceptor
	err  error
}

// NewGL builds the GStreamer flip bin. WithRegistry is ignored.
func NewGL(opts ...Option) *GLFilter {
	o := options{method: DefaultMethod}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New().String()
	name := o.name
	if name == "" {
		name = FactoryName + id[:8]
	}
	f := &GLFilter{id: id, name: name}

	bin, err := glbin.New(name)
	if err == nil {
		f.ic = negotiate.NewInterceptor(bin, id)
		err = bin.Attach(f.ic)
	}
	if err != nil {
		f.err = fmt.Errorf("%w: %w", ErrConstruction, err)
		f.ic = negotiate.NewInterceptor(&stages{}, id)
		slog.Warn("videoflip: failed to build GL bin, filter is inert",
			"id", id,
			"name", name,
			"error", err,
		)
	} else {
		f.bin = bin
		if err := f.ic.Sync(); err != nil {
			slog.Warn("videoflip: failed to initialise gltransformation", "id", id, "error", err)
		}
	}

	if o.method != DefaultMethod {
		if err := f.SetMethod(o.method); err != nil {
			slog.Warn("videoflip: ignoring initial method", "id", id, "method", int(o.method), "error", err)
		}
	}

	slog.Info("videoflip: GL filter created",
		"id", id,
		"name", name,
		"method", f.Method().String(),
		"operational", f.Operational(),
	)
	return f
}

// Element returns the bin for Pipeline.AddMany and linking, nil when inert.
func (f *GLFilter) Element() *gst.Element {
	if f.bin == nil {
		return nil
	}
	return f.bin.Element()
}

// ID returns the instance id used in log records.
func (f *GLFilter) ID() string { return f.id }

// Name returns the bin name.
func (f *GLFilter) Name() string { return f.name }

// Metadata returns ElementMetadata.
func (f *GLFilter) Metadata() Metadata { return ElementMetadata }

// Err reports why the filter is inert, or nil.
func (f *GLFilter) Err() error { return f.err }

// Operational reports whether the bin was built.
func (f *GLFilter) Operational() bool { return f.err == nil }

// SetMethod selects the flip method.
func (f *GLFilter) SetMethod(m Method) error {
	if err := f.ic.SetMethod(m); err != nil {
		return fmt.Errorf("videoflip: %w", err)
	}
	return nil
}

// Method returns the selected method.
func (f *GLFilter) Method() Method { return f.ic.Method() }

// ActiveMethod returns the method in effect.
func (f *GLFilter) ActiveMethod() Method { return f.ic.Active() }

// State returns the selected, tag-derived and active methods.
func (f *GLFilter) State() State { return f.ic.Snapshot() }
