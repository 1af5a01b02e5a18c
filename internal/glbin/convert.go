package glbin

import (
	"errors"
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/negotiate"
)

// Template is the caps family of the flip bin's pads.
const Template = "video/x-raw(memory:GLMemory), format=(string)RGBA, " +
	"width=(int)[ 1, 2147483647 ], height=(int)[ 1, 2147483647 ], " +
	"framerate=(fraction)[ 0/1, 2147483647/1 ], texture-target=(string)2D"

var errNilCaps = errors.New("glbin: nil caps")

// ToGst converts caps through their text form.
func ToGst(c caps.Caps) (*gst.Caps, error) {
	text := c.String()
	gc := gst.NewCapsFromString(text)
	if gc == nil {
		return nil, fmt.Errorf("glbin: gstreamer rejected caps %q", text)
	}
	return gc, nil
}

// FromGst converts GStreamer caps through their text form.
func FromGst(gc *gst.Caps) (caps.Caps, error) {
	if gc == nil {
		return caps.Caps{}, errNilCaps
	}
	c, err := caps.Parse(gc.String())
	if err != nil {
		return caps.Caps{}, fmt.Errorf("glbin: %w", err)
	}
	return c, nil
}

// ProbeReturn maps a verdict onto a pad probe return.
func ProbeReturn(v negotiate.Verdict) gst.PadProbeReturn {
	switch v {
	case negotiate.Handled:
		return gst.PadProbeHandled
	case negotiate.Rejected:
		return gst.PadProbeDrop
	default:
		return gst.PadProbeOK
	}
}

// QueryKind classifies a GStreamer query type.
func QueryKind(t gst.QueryType) negotiate.QueryKind {
	switch t {
	case gst.QueryCaps:
		return negotiate.QueryCaps
	case gst.QueryAcceptCaps:
		return negotiate.QueryAcceptCaps
	default:
		return negotiate.QueryOther
	}
}
