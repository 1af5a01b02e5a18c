// Package videoflip provides a GPU video flip filter: it rotates or mirrors
// RGBA GL frames by driving a generic 3D transformation stage, and keeps
// caps negotiation consistent with the new geometry.
//
// The filter is a small sub-graph with two boundary pads:
//
//	sink -> capsfilter (input pin) -> gltransformation -> capsfilter (output pin) -> src
//
// When the input format is committed, both pins are fixed: the input pin to
// the committed caps and the output pin to the rotated caps followed by the
// transformation's own template. Caps and accept-caps queries do not see the
// pins; they are answered by the live transformation stage and by whatever
// sits downstream, so neighbours can still renegotiate while the pins are
// locked.
//
// # Quick Start
//
// NewGL builds the sub-graph from go-gst elements as a bin ready for a
// GStreamer pipeline:
//
//	gst.Init(nil)
//	pipeline, _ := gst.NewPipelineFromString(
//	    "videotestsrc ! glupload ! glcolorconvert name=convert")
//
//	flip := videoflip.NewGL(videoflip.WithMethod(videoflip.MethodClockwise))
//	if err := flip.Err(); err != nil {
//	    log.Fatalf("flip is inert: %v", err)
//	}
//	sink, _ := gst.NewElement("glimagesink")
//	convert, _ := pipeline.GetElementByName("convert")
//
//	_ = pipeline.AddMany(flip.Element(), sink)
//	_ = gst.ElementLinkMany(convert, flip.Element(), sink)
//	_ = pipeline.SetState(gst.StatePlaying)
//
// # In-memory Model
//
// New builds the same sub-graph on the graph package, which negotiates
// without GStreamer. It is useful for tests and for checking what a method
// does to a format:
//
//	f := videoflip.New(videoflip.WithMethod(videoflip.MethodClockwise))
//	src := graph.NewFakeSrc("src")
//	sink := graph.NewFakeSink("sink")
//	_ = graph.LinkMany(src, f, sink)
//
//	src.Push(graph.NewCapsEvent(caps.MustParse(
//	    "video/x-raw(memory:GLMemory), format=(string)RGBA, width=(int)1920, height=(int)1080")))
//	fmt.Println(sink.CurrentCaps()) // width=(int)1080, height=(int)1920
//
// # Methods
//
// The "method" property accepts these nicks:
//
//   - none: identity (default)
//   - clockwise: rotate clockwise 90 degrees
//   - rotate-180: rotate 180 degrees
//   - counterclockwise: rotate counter-clockwise 90 degrees
//   - horizontal-flip, vertical-flip: mirror
//   - upper-left-diagonal, upper-right-diagonal: flip across a diagonal
//   - automatic: follow the stream's image-orientation tag
//
// Quarter turns and diagonal flips exchange width and height and invert a
// non-square pixel aspect ratio.
//
// # Failure Model
//
// Neither constructor panics or returns an error. If a stage cannot be
// created, linked or exposed, the filter stays inert (no pads, nil Element)
// and Err reports the cause wrapped around ErrConstruction.
//
// # Thread Safety
//
// SetMethod and SetProperty may be called from any goroutine while events
// flow. The orientation state is guarded by one mutex that is released
// before the transformation stage is updated. Updates to the stage are
// serialised and always carry the method active at that moment, so after
// concurrent changes the stage matches ActiveMethod.
package videoflip
