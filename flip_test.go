package videoflip

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/graph"
)

func frame(w, h int, extra string) caps.Caps {
	return caps.MustParse(fmt.Sprintf(
		"video/x-raw(memory:GLMemory), format=(string)RGBA, width=(int)%d, height=(int)%d, "+
			"framerate=(fraction)30/1, texture-target=(string)2D%s", w, h, extra))
}

type harness struct {
	src  *graph.FakeSrc
	flip *Filter
	sink *graph.FakeSink
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	h := harness{
		src:  graph.NewFakeSrc("src"),
		flip: New(opts...),
		sink: graph.NewFakeSink("sink"),
	}
	require.NoError(t, h.flip.Err())
	require.NoError(t, graph.LinkMany(h.src, h.flip, h.sink))
	return h
}

func (h harness) transformation(t *testing.T) *graph.Transformation {
	t.Helper()
	tr, ok := h.flip.stages.transform.(*graph.Transformation)
	require.True(t, ok)
	return tr
}

func (h harness) pins(t *testing.T) (in, out caps.Caps) {
	t.Helper()
	i, ok := h.flip.stages.input.(*graph.CapsFilter)
	require.True(t, ok)
	o, ok := h.flip.stages.output.(*graph.CapsFilter)
	require.True(t, ok)
	return i.Caps(), o.Caps()
}

func TestFilter_Defaults(t *testing.T) {
	h := newHarness(t, WithName("flip0"))

	assert.Equal(t, "flip0", h.flip.Name())
	assert.Equal(t, FactoryName, h.flip.Factory())
	assert.Equal(t, MethodIdentity, h.flip.Method())
	assert.Equal(t, MethodIdentity, h.flip.ActiveMethod())
	assert.True(t, h.flip.Operational())
	assert.NotEmpty(t, h.flip.ID())
	assert.Equal(t, "flip0:sink", h.flip.SinkPad().String())
	assert.Equal(t, "flip0:src", h.flip.SrcPad().String())
	assert.Nil(t, h.flip.StaticPad("video"))
	assert.Equal(t, ElementMetadata, h.flip.Metadata())

	tr := h.transformation(t)
	assert.True(t, tr.Ortho())
	assert.Equal(t, 1, tr.Updates(), "construction writes the identity transform once")
}

// TestFilter_ClockwiseScenario commits 1920x1080 with method clockwise.
func TestFilter_ClockwiseScenario(t *testing.T) {
	h := newHarness(t, WithMethod(MethodClockwise))

	in := frame(1920, 1080, "")
	require.True(t, h.src.Push(graph.NewCapsEvent(in)))

	inPin, outPin := h.pins(t)
	assert.Equal(t, in.String(), inPin.String())
	assert.Equal(t, frame(1080, 1920, "").Union(caps.MustParse(PadTemplate)).String(), outPin.String())
	assert.Equal(t, frame(1080, 1920, "").String(), h.sink.CurrentCaps().String())

	tr := h.transformation(t)
	assert.Equal(t, 90.0, tr.Value("rotation-z"))
	assert.Equal(t, 1.0, tr.Value("scale-x"))
	assert.Equal(t, 1.0, tr.Value("scale-y"))
}

func TestFilter_PixelAspectRatio(t *testing.T) {
	tests := []struct {
		name    string
		par     string
		wantPar caps.Fraction
	}{
		{"square", "1/1", caps.Fraction{Num: 1, Den: 1}},
		{"anamorphic", "4/3", caps.Fraction{Num: 3, Den: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, WithMethod(MethodCounterClockwise))
			require.True(t, h.src.Push(graph.NewCapsEvent(frame(640, 480, ", pixel-aspect-ratio=(fraction)"+tt.par))))

			s := h.sink.CurrentCaps().Structure(0)
			w, _ := s.Int("width")
			hgt, _ := s.Int("height")
			par, ok := s.Fraction("pixel-aspect-ratio")
			require.True(t, ok)
			assert.Equal(t, []int{480, 640}, []int{w, hgt})
			assert.Equal(t, tt.wantPar, par)
		})
	}
}

// TestFilter_QueriesBypassPins locks the pins to RGBA 640x480 and checks
// that capability queries still see the full transformation range.
func TestFilter_QueriesBypassPins(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.src.Push(graph.NewCapsEvent(frame(640, 480, ""))))

	inPin, _ := h.pins(t)
	require.Equal(t, frame(640, 480, "").String(), inPin.String())

	q := graph.NewCapsQuery()
	require.True(t, h.src.QueryDownstream(q))
	assert.Equal(t, PadTemplate, q.Result.String())

	other := frame(320, 240, "")
	assert.False(t, inPin.CanIntersect(other), "the pin alone would refuse")
	accept := graph.NewAcceptCapsQuery(other)
	require.True(t, h.src.QueryDownstream(accept))
	assert.True(t, accept.Accepted)

	filtered := graph.NewFilteredCapsQuery(caps.MustParse("video/x-raw(memory:GLMemory), width=(int)320"))
	require.True(t, h.src.QueryDownstream(filtered))
	w, ok := filtered.Result.Structure(0).Int("width")
	require.True(t, ok)
	assert.Equal(t, 320, w)
}

func TestFilter_QueryEmptyDownstream(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sink.SetProperty("caps", "EMPTY"))

	q := graph.NewCapsQuery()
	require.True(t, h.src.QueryDownstream(q))
	assert.True(t, q.Result.IsEmpty())
}

func TestFilter_UnrelatedQueriesUseNormalPath(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.src.QueryDownstream(&graph.Query{Kind: graph.QueryLatency}))
}

// TestFilter_AutomaticFollowsTag sets automatic and sends rotate-90.
func TestFilter_AutomaticFollowsTag(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.flip.SetProperty("method", "automatic"))
	assert.Equal(t, MethodIdentity, h.flip.ActiveMethod())

	require.True(t, h.src.Push(graph.NewTagEvent(map[string]string{"image-orientation": "rotate-90"})))
	assert.Equal(t, MethodClockwise, h.flip.ActiveMethod())
	assert.Equal(t, "rotate-90", h.sink.Tags()["image-orientation"], "tags keep flowing")

	require.True(t, h.src.Push(graph.NewCapsEvent(frame(640, 480, ""))))
	assert.Equal(t, frame(480, 640, "").String(), h.sink.CurrentCaps().String())

	require.True(t, h.src.Push(graph.NewTagEvent(map[string]string{"image-orientation": "upside-down"})))
	assert.Equal(t, State{User: MethodAutomatic, Tag: MethodClockwise, Active: MethodClockwise}, h.flip.State())

	require.True(t, h.src.Push(graph.NewTagEvent(map[string]string{"title": "no orientation"})))
	assert.Equal(t, MethodClockwise, h.flip.ActiveMethod())
}

func TestFilter_ExplicitMethodIgnoresTag(t *testing.T) {
	h := newHarness(t, WithMethod(MethodVerticalFlip))
	require.True(t, h.src.Push(graph.NewTagEvent(map[string]string{"image-orientation": "rotate-270"})))

	assert.Equal(t, MethodVerticalFlip, h.flip.ActiveMethod())
	assert.Equal(t, MethodCounterClockwise, h.flip.State().Tag)

	require.NoError(t, h.flip.SetMethod(MethodAutomatic))
	assert.Equal(t, MethodCounterClockwise, h.flip.ActiveMethod())
}

func TestFilter_MethodChangeRenegotiates(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.src.Push(graph.NewCapsEvent(frame(640, 480, ""))))
	assert.Equal(t, frame(640, 480, "").String(), h.sink.CurrentCaps().String())

	require.NoError(t, h.flip.SetMethod(MethodUpperRightDiagonal))
	assert.Equal(t, frame(480, 640, "").String(), h.sink.CurrentCaps().String())
	_, outPin := h.pins(t)
	assert.Equal(t, frame(480, 640, "").Union(caps.MustParse(PadTemplate)).String(), outPin.String())

	require.NoError(t, h.flip.SetMethod(MethodRotate180))
	assert.Equal(t, frame(640, 480, "").String(), h.sink.CurrentCaps().String())
	assert.Equal(t, []graph.EventKind{graph.EventCaps, graph.EventCaps, graph.EventCaps}, h.sink.Events())
}

func TestFilter_ParameterPush(t *testing.T) {
	h := newHarness(t)
	tr := h.transformation(t)

	t.Run("Property_1_ResetBeforeApply", func(t *testing.T) {
		require.NoError(t, h.flip.SetMethod(MethodUpperLeftDiagonal))
		assert.Equal(t, 270.0, tr.Value("rotation-z"))
		assert.Equal(t, -1.0, tr.Value("scale-x"))

		require.NoError(t, h.flip.SetMethod(MethodHorizontalFlip))
		assert.Equal(t, 0.0, tr.Value("rotation-z"))
		assert.Equal(t, -1.0, tr.Value("scale-x"))
		assert.Equal(t, 1.0, tr.Value("scale-y"))
		assert.Equal(t, 0.0, tr.Value("rotation-x"))
		assert.Equal(t, 0.0, tr.Value("rotation-y"))
	})

	t.Run("Property_2_IdempotentPush", func(t *testing.T) {
		before := tr.Updates()
		require.NoError(t, h.flip.SetMethod(MethodHorizontalFlip))
		require.NoError(t, h.flip.SetProperty("method", MethodHorizontalFlip))
		assert.Equal(t, before, tr.Updates())

		require.NoError(t, h.flip.SetMethod(MethodIdentity))
		assert.Equal(t, before+1, tr.Updates())
	})
}

func TestFilter_Properties(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.flip.SetProperty("method", "clockwise"))
	v, err := h.flip.GetProperty("method")
	require.NoError(t, err)
	assert.Equal(t, MethodClockwise, v)

	require.NoError(t, h.flip.SetProperty("method", 2))
	assert.Equal(t, MethodRotate180, h.flip.Method())

	assert.ErrorIs(t, h.flip.SetProperty("method", "sideways"), ErrInvalidMethod)
	assert.ErrorIs(t, h.flip.SetProperty("method", 99), ErrInvalidMethod)
	assert.ErrorIs(t, h.flip.SetProperty("method", 1.5), ErrInvalidMethod)
	assert.Equal(t, MethodRotate180, h.flip.Method())

	assert.ErrorIs(t, h.flip.SetProperty("angle", 90), ErrUnknownProperty)
	_, err = h.flip.GetProperty("angle")
	assert.ErrorIs(t, err, ErrUnknownProperty)

	v, err = h.flip.Property("method")
	require.NoError(t, err)
	assert.Equal(t, MethodRotate180, v)
}

// TestFilter_ConstructionFailure checks that every kind of stage failure
// leaves an inert filter instead of a panic.
func TestFilter_ConstructionFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *graph.Registry)
		want  error
	}{
		{
			name:  "missing transformation",
			setup: func(r *graph.Registry) { r.Unregister(graph.FactoryTransformation) },
			want:  graph.ErrNoFactory,
		},
		{
			name:  "missing capsfilter",
			setup: func(r *graph.Registry) { r.Unregister(graph.FactoryCapsFilter) },
			want:  graph.ErrNoFactory,
		},
		{
			name: "transformation without ortho",
			setup: func(r *graph.Registry) {
				r.Register(graph.FactoryTransformation, func(name string) (graph.Element, error) {
					return graph.NewCapsFilter(name), nil
				})
			},
			want: graph.ErrNoProperty,
		},
		{
			name: "factory error",
			setup: func(r *graph.Registry) {
				r.Register(graph.FactoryCapsFilter, func(string) (graph.Element, error) {
					return nil, errors.New("out of memory")
				})
			},
			want: ErrConstruction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := graph.NewRegistry()
			tt.setup(r)

			f := New(WithRegistry(r), WithMethod(MethodClockwise))
			require.Error(t, f.Err())
			assert.ErrorIs(t, f.Err(), ErrConstruction)
			assert.ErrorIs(t, f.Err(), tt.want)
			assert.False(t, f.Operational())
			assert.Nil(t, f.SinkPad())
			assert.Nil(t, f.SrcPad())

			assert.Equal(t, MethodClockwise, f.Method(), "properties stay usable")
			assert.NoError(t, f.SetMethod(MethodRotate180))

			err := graph.LinkMany(graph.NewFakeSrc("src"), f)
			assert.ErrorIs(t, err, graph.ErrLinkFailed)
		})
	}
}

func TestMethods(t *testing.T) {
	methods := Methods()
	require.Len(t, methods, 9)

	nicks := make([]string, 0, len(methods))
	for _, m := range methods {
		nicks = append(nicks, m.Nick)
		assert.NotEmpty(t, m.Description)
	}
	assert.Equal(t, []string{
		"none", "clockwise", "rotate-180", "counterclockwise", "horizontal-flip",
		"vertical-flip", "upper-left-diagonal", "upper-right-diagonal", "automatic",
	}, nicks)
	assert.Equal(t, "Rotate clockwise 90 degrees", methods[MethodClockwise].Description)

	m, err := ParseMethod("upper-left-diagonal")
	require.NoError(t, err)
	assert.Equal(t, MethodUpperLeftDiagonal, m)
}
