package negotiate

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

const template = "video/x-raw(memory:GLMemory), format=(string)RGBA, " +
	"width=(int)[ 1, 2147483647 ], height=(int)[ 1, 2147483647 ], " +
	"framerate=(fraction)[ 0/1, 2147483647/1 ], texture-target=(string)2D"

func frame(w, h int, par string) caps.Caps {
	text := "video/x-raw(memory:GLMemory), format=(string)RGBA, " +
		"width=(int)" + strconv.Itoa(w) + ", height=(int)" + strconv.Itoa(h) + ", framerate=(fraction)30/1"
	if par != "" {
		text += ", pixel-aspect-ratio=(fraction)" + par
	}
	return caps.MustParse(text)
}

type fakeTarget struct {
	mu       sync.Mutex
	input    caps.Caps
	output   caps.Caps
	applied  []orientation.Params
	applyErr error
	calls    []string
}

func (f *fakeTarget) SetInputFormat(c caps.Caps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = c
	f.calls = append(f.calls, "input")
	return nil
}

func (f *fakeTarget) SetOutputFormat(c caps.Caps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.output = c
	f.calls = append(f.calls, "output")
	return nil
}

func (f *fakeTarget) TransformOutputTemplate() caps.Caps { return caps.MustParse(template) }

func (f *fakeTarget) ApplyTransform(p orientation.Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, p)
	f.calls = append(f.calls, "apply")
	return f.applyErr
}

func (f *fakeTarget) last() orientation.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applied[len(f.applied)-1]
}

// gatedTarget blocks its first ApplyTransform until gate is closed.
type gatedTarget struct {
	fakeTarget
	once    sync.Once
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedTarget) ApplyTransform(p orientation.Params) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.gate
	}
	return g.fakeTarget.ApplyTransform(p)
}

func (f *fakeTarget) pushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func TestTransformCaps(t *testing.T) {
	tests := []struct {
		name   string
		method orientation.Method
		in     caps.Caps
		want   caps.Caps
	}{
		{"clockwise swaps", orientation.Rotate90CW, frame(1920, 1080, ""), frame(1080, 1920, "")},
		{"square pixels untouched", orientation.Rotate90CCW, frame(640, 480, "1/1"), frame(480, 640, "1/1")},
		{"par inverted", orientation.FlipDiagonalA, frame(640, 480, "4/3"), frame(480, 640, "3/4")},
		{"diagonal b swaps", orientation.FlipDiagonalB, frame(10, 20, ""), frame(20, 10, "")},
		{"identity passes", orientation.Identity, frame(640, 480, "4/3"), frame(640, 480, "4/3")},
		{"rotate-180 passes", orientation.Rotate180, frame(640, 480, ""), frame(640, 480, "")},
		{"flips pass", orientation.FlipVertical, frame(640, 480, ""), frame(640, 480, "")},
		{"ranges pass", orientation.Rotate90CW, caps.MustParse(template), caps.MustParse(template)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformCaps(FromSink, tt.method, tt.in)
			if diff := cmp.Diff(tt.want.String(), got.String()); diff != "" {
				t.Errorf("TransformCaps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransformCaps_Properties(t *testing.T) {
	t.Run("Property_1_QuarterTurnsRoundTrip", func(t *testing.T) {
		in := frame(1920, 1080, "4/3")
		there := TransformCaps(FromSink, orientation.Rotate90CW, in)
		back := TransformCaps(FromSrc, orientation.Rotate90CCW, there)
		assert.True(t, in.Equal(back), "got %s", back)
	})

	t.Run("Property_2_InputNotModified", func(t *testing.T) {
		in := frame(1920, 1080, "4/3")
		_ = TransformCaps(FromSink, orientation.Rotate90CW, in)
		assert.Equal(t, frame(1920, 1080, "4/3").String(), in.String())
	})

	t.Run("Property_3_EveryStructure", func(t *testing.T) {
		in := frame(4, 2, "").Union(caps.MustParse("video/x-raw, width=(int)8, height=(int)6"))
		got := TransformCaps(FromSink, orientation.Rotate90CW, in)
		require.Equal(t, 2, got.Len())
		w, _ := got.Structure(1).Int("width")
		h, _ := got.Structure(1).Int("height")
		assert.Equal(t, []int{6, 8}, []int{w, h})
	})

	t.Run("Property_4_DirectionIndependent", func(t *testing.T) {
		for _, m := range orientation.Methods() {
			in := frame(1920, 1080, "4/3")
			down := TransformCaps(FromSink, m, in)
			up := TransformCaps(FromSrc, m, in)
			assert.True(t, down.Equal(up), "%s: %s != %s", m, down, up)
		}
	})
}

func TestInterceptor_ClockwiseScenario(t *testing.T) {
	target := &fakeTarget{}
	ic := NewInterceptor(target, "test")
	require.NoError(t, ic.SetMethod(orientation.Rotate90CW))

	in := frame(1920, 1080, "")
	assert.Equal(t, NotIntercepted, ic.OnFormatCommit(in))

	assert.Equal(t, in.String(), target.input.String())
	want := frame(1080, 1920, "").Union(caps.MustParse(template))
	assert.Equal(t, want.String(), target.output.String())
	require.Equal(t, 1, target.pushes())
	assert.Equal(t, orientation.Params{RotationZ: 90, ScaleX: 1, ScaleY: 1}, target.applied[0])
}

func TestInterceptor_IdempotentPush(t *testing.T) {
	target := &fakeTarget{}
	ic := NewInterceptor(target, "test")

	require.NoError(t, ic.SetMethod(orientation.Identity))
	assert.Equal(t, 0, target.pushes(), "identity is already active")

	require.NoError(t, ic.SetMethod(orientation.Rotate180))
	require.NoError(t, ic.SetMethod(orientation.Rotate180))
	assert.Equal(t, 1, target.pushes())

	require.NoError(t, ic.SetMethod(orientation.Auto))
	assert.Equal(t, 2, target.pushes(), "auto without a tag falls back to identity")
	assert.Equal(t, orientation.Auto, ic.Method())
	assert.Equal(t, orientation.Identity, ic.Active())

	assert.ErrorIs(t, ic.SetMethod(orientation.Method(42)), orientation.ErrInvalidMethod)
	assert.Equal(t, 2, target.pushes())
}

// TestInterceptor_ConcurrentMethodChange holds the first parameter write
// while a second method is selected; the target must end on the second.
func TestInterceptor_ConcurrentMethodChange(t *testing.T) {
	target := &gatedTarget{entered: make(chan struct{}), gate: make(chan struct{})}
	ic := NewInterceptor(target, "test")
	ic.OnFormatCommit(frame(640, 480, ""))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, ic.SetMethod(orientation.Rotate90CW))
	}()
	<-target.entered

	go func() {
		defer wg.Done()
		assert.NoError(t, ic.SetMethod(orientation.Rotate180))
	}()
	require.Eventually(t, func() bool { return ic.Active() == orientation.Rotate180 },
		time.Second, time.Millisecond)
	close(target.gate)
	wg.Wait()

	require.NoError(t, ic.SetMethod(orientation.Rotate180))
	assert.Equal(t, orientation.Rotate180, ic.Active())
	assert.Equal(t, orientation.ParamsFor(orientation.Rotate180), target.last())
	assert.Equal(t, 2, target.pushes())
	assert.Equal(t, frame(640, 480, "").Union(caps.MustParse(template)).String(), target.output.String(),
		"output pin follows the final method")
}

func TestInterceptor_OrientationTag(t *testing.T) {
	target := &fakeTarget{}
	ic := NewInterceptor(target, "test")
	require.NoError(t, ic.SetMethod(orientation.Auto))
	ic.OnFormatCommit(frame(640, 480, ""))
	target.calls = nil

	assert.Equal(t, NotIntercepted, ic.OnOrientationTag("rotate-90"))
	assert.Equal(t, orientation.Rotate90CW, ic.Active())
	assert.Equal(t, []string{"input", "output", "apply"}, target.calls, "pins are updated before the transform")
	assert.Equal(t, frame(480, 640, "").Union(caps.MustParse(template)).String(), target.output.String())

	ic.OnOrientationTag("sideways")
	assert.Equal(t, orientation.Rotate90CW, ic.Snapshot().Tag, "unknown values keep the tag method")
	assert.Equal(t, 1, target.pushes())

	require.NoError(t, ic.SetMethod(orientation.FlipHorizontal))
	ic.OnOrientationTag("rotate-180")
	assert.Equal(t, orientation.FlipHorizontal, ic.Active())
	assert.Equal(t, orientation.Snapshot{
		User:   orientation.FlipHorizontal,
		Tag:    orientation.Rotate180,
		Active: orientation.FlipHorizontal,
	}, ic.Snapshot())
}

func TestInterceptor_QueryBypass(t *testing.T) {
	ic := NewInterceptor(&fakeTarget{}, "test")
	ok := func() bool { return true }
	fail := func() bool { return false }
	never := func() bool {
		t.Fatal("forward called for an unrelated query")
		return false
	}

	tests := []struct {
		kind    QueryKind
		forward func() bool
		want    Verdict
	}{
		{QueryCaps, ok, Handled},
		{QueryCaps, fail, Rejected},
		{QueryAcceptCaps, ok, Handled},
		{QueryAcceptCaps, fail, Rejected},
		{QueryOther, never, NotIntercepted},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ic.OnInputQuery(tt.kind, tt.forward))
			assert.Equal(t, tt.want, ic.OnTransformOutputQuery(tt.kind, tt.forward))
		})
	}
}

func TestInterceptor_Sync(t *testing.T) {
	target := &fakeTarget{}
	ic := NewInterceptor(target, "test")
	require.NoError(t, ic.Sync())
	assert.Equal(t, []orientation.Params{{ScaleX: 1, ScaleY: 1}}, target.applied)

	target.applyErr = errors.New("no such property")
	assert.ErrorContains(t, ic.Sync(), "negotiate: apply none: no such property")
}
