// Package glbin builds the flip sub-graph from GStreamer elements:
//
//	capsfilter ! gltransformation ortho=true ! capsfilter
//
// wrapped in a bin with "sink" and "src" ghost pads. Probes on the ghost
// sink pad and on the transformation's src pad hand events and queries to a
// negotiate.Interceptor, so the GStreamer element behaves exactly like the
// in-memory model.
package glbin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/negotiate"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// ErrBuild is returned when the bin cannot be assembled.
var ErrBuild = errors.New("glbin: failed to build flip bin")

// Bin is the GStreamer flip bin. It implements negotiate.Target.
type Bin struct {
	bin       *gst.Bin
	input     *gst.Element
	transform *gst.Element
	output    *gst.Element
	sink      *gst.GhostPad
	src       *gst.GhostPad
}

// New creates and links the three stages and exposes the ghost pads.
// Probes are installed separately by Attach.
func New(name string) (*Bin, error) {
	gst.Init(nil)

	input, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("%w: input capsfilter: %w", ErrBuild, err)
	}
	transform, err := gst.NewElement("gltransformation")
	if err != nil {
		return nil, fmt.Errorf("%w: gltransformation: %w", ErrBuild, err)
	}
	if err := transform.SetProperty("ortho", true); err != nil {
		return nil, fmt.Errorf("%w: gltransformation ortho: %w", ErrBuild, err)
	}
	output, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("%w: output capsfilter: %w", ErrBuild, err)
	}

	bin := gst.NewBin(name)
	if bin == nil {
		return nil, fmt.Errorf("%w: bin %q", ErrBuild, name)
	}
	if err := bin.AddMany(input, transform, output); err != nil {
		return nil, fmt.Errorf("%w: add stages: %w", ErrBuild, err)
	}
	if err := gst.ElementLinkMany(input, transform, output); err != nil {
		return nil, fmt.Errorf("%w: link stages: %w", ErrBuild, err)
	}

	sink, err := ghost(bin, "sink", input)
	if err != nil {
		return nil, err
	}
	src, err := ghost(bin, "src", output)
	if err != nil {
		return nil, err
	}

	slog.Debug("glbin: flip bin created", "name", name)
	return &Bin{
		bin:       bin,
		input:     input,
		transform: transform,
		output:    output,
		sink:      sink,
		src:       src,
	}, nil
}

func ghost(bin *gst.Bin, name string, elem *gst.Element) (*gst.GhostPad, error) {
	target := elem.GetStaticPad(name)
	if target == nil {
		return nil, fmt.Errorf("%w: %s has no %s pad", ErrBuild, elem.GetName(), name)
	}
	pad := gst.NewGhostPad(name, target)
	if pad == nil {
		return nil, fmt.Errorf("%w: ghost pad %s", ErrBuild, name)
	}
	if !bin.AddPad(pad.Pad) {
		return nil, fmt.Errorf("%w: add ghost pad %s", ErrBuild, name)
	}
	return pad, nil
}

// Attach installs the probes that route events and queries to ic.
func (b *Bin) Attach(ic *negotiate.Interceptor) error {
	transformSink := b.transform.GetStaticPad("sink")
	transformSrc := b.transform.GetStaticPad("src")
	if transformSink == nil || transformSrc == nil {
		return fmt.Errorf("%w: gltransformation pads missing", ErrBuild)
	}

	b.sink.AddProbe(gst.PadProbeTypeEventDownstream, func(_ *gst.Pad, info *gst.PadProbeInfo) gst.PadProbeReturn {
		ev := info.GetEvent()
		if ev == nil {
			return gst.PadProbeOK
		}
		switch ev.Type() {
		case gst.EventTypeCaps:
			c, err := FromGst(ev.ParseCaps())
			if err != nil {
				slog.Warn("glbin: cannot read committed caps", "error", err)
				return gst.PadProbeOK
			}
			return ProbeReturn(ic.OnFormatCommit(c))
		case gst.EventTypeTag:
			tags := ev.ParseTag()
			if tags == nil {
				return gst.PadProbeOK
			}
			if v, ok := tags.GetString(gst.Tag(orientation.TagImageOrientation)); ok {
				return ProbeReturn(ic.OnOrientationTag(v))
			}
		}
		return gst.PadProbeOK
	})

	b.sink.AddProbe(gst.PadProbeTypeQueryDownstream, func(_ *gst.Pad, info *gst.PadProbeInfo) gst.PadProbeReturn {
		q := info.GetQuery()
		if q == nil {
			return gst.PadProbeOK
		}
		return ProbeReturn(ic.OnInputQuery(QueryKind(q.Type()), func() bool {
			return transformSink.Query(q)
		}))
	})

	transformSrc.AddProbe(gst.PadProbeTypeQueryDownstream, func(_ *gst.Pad, info *gst.PadProbeInfo) gst.PadProbeReturn {
		q := info.GetQuery()
		if q == nil {
			return gst.PadProbeOK
		}
		return ProbeReturn(ic.OnTransformOutputQuery(QueryKind(q.Type()), func() bool {
			return b.src.PeerQuery(q)
		}))
	})

	slog.Debug("glbin: probes attached", "bin", b.bin.GetName())
	return nil
}

// Element returns the bin as an element, ready for Pipeline.AddMany.
func (b *Bin) Element() *gst.Element { return b.bin.Element }

// Transformation returns the gltransformation stage.
func (b *Bin) Transformation() *gst.Element { return b.transform }

// SetInputFormat fixes the input capsfilter.
func (b *Bin) SetInputFormat(c caps.Caps) error {
	return setCaps(b.input, c)
}

// SetOutputFormat fixes the output capsfilter.
func (b *Bin) SetOutputFormat(c caps.Caps) error {
	return setCaps(b.output, c)
}

func setCaps(elem *gst.Element, c caps.Caps) error {
	gc, err := ToGst(c)
	if err != nil {
		return err
	}
	return elem.SetProperty("caps", gc)
}

// TransformOutputTemplate returns the src template of gltransformation,
// falling back to the RGBA 2D family when it cannot be read.
func (b *Bin) TransformOutputTemplate() caps.Caps {
	pad := b.transform.GetStaticPad("src")
	if pad != nil {
		c, err := FromGst(pad.GetPadTemplateCaps())
		if err == nil {
			return c
		}
		slog.Debug("glbin: unreadable transformation template", "error", err)
	}
	return caps.MustParse(Template)
}

// ApplyTransform writes the five transform properties in order.
func (b *Bin) ApplyTransform(p orientation.Params) error {
	for _, prop := range p.Properties() {
		if err := b.transform.SetProperty(prop.Name, float32(prop.Value)); err != nil {
			return fmt.Errorf("glbin: set %s: %w", prop.Name, err)
		}
	}
	return nil
}
