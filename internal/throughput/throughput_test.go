package throughput

import (
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func regular(n int, interval time.Duration) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = epoch.Add(time.Duration(i+1) * interval)
	}
	return times
}

func TestCalculate_Regular(t *testing.T) {
	st := Calculate(regular(30, 100*time.Millisecond), 3*time.Second)

	assert.Equal(t, 30, st.Frames)
	assert.InDelta(t, 10.0, st.FPSMean, 1e-9)
	assert.InDelta(t, 10.0, st.FPSMin, 1e-6)
	assert.InDelta(t, 10.0, st.FPSMax, 1e-6)
	assert.InDelta(t, 0.0, st.FPSStdDev, 1e-6)
	assert.InDelta(t, 0.0, st.JitterMax, 1e-9)
	assert.True(t, st.Stable)
}

func TestCalculate_Irregular(t *testing.T) {
	times := []time.Time{epoch}
	for i := 0; i < 20; i++ {
		d := 50 * time.Millisecond
		if i%2 == 1 {
			d = 150 * time.Millisecond
		}
		times = append(times, times[len(times)-1].Add(d))
	}
	st := Calculate(times, 2*time.Second)

	assert.Equal(t, 21, st.Frames)
	assert.InDelta(t, 20.0, st.FPSMax, 1e-6)
	assert.InDelta(t, 1/0.15, st.FPSMin, 1e-6)
	assert.False(t, st.Stable)
}

func TestCalculate_EdgeCases(t *testing.T) {
	assert.Equal(t, Stats{Duration: time.Second}, Calculate(nil, time.Second))

	one := Calculate(regular(1, time.Second), time.Second)
	assert.Equal(t, 1, one.Frames)
	assert.InDelta(t, 1.0, one.FPSMean, 1e-9)
	assert.False(t, one.Stable)

	same := Calculate([]time.Time{epoch, epoch, epoch}, time.Second)
	assert.Zero(t, same.FPSMin)
	assert.False(t, same.Stable)

	assert.Zero(t, Calculate(regular(5, time.Second), 0).FPSMean)
}

// TestCalculate_Property1_RegularIsStable checks that evenly spaced frames
// are always stable with min == max.
func TestCalculate_Property1_RegularIsStable(t *testing.T) {
	f := func(count uint8, ms uint8) bool {
		n := int(count)%200 + 2
		interval := time.Duration(int(ms)+1) * time.Millisecond
		st := Calculate(regular(n, interval), time.Duration(n)*interval)
		return st.Stable && st.FPSMax-st.FPSMin < 1e-6*st.FPSMax
	}
	require.NoError(t, quick.Check(f, nil))
}

// clock steps 100ms every time it is read.
func clock() func() time.Time {
	now := epoch
	return func() time.Time {
		now = now.Add(100 * time.Millisecond)
		return now
	}
}

func TestMeter_Window(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		m := newMeter(10, clock())
		for i := 0; i < 3; i++ {
			m.Tick()
		}
		st := m.Stats()
		assert.Equal(t, 3, st.Frames)
		assert.Equal(t, 400*time.Millisecond, st.Duration)
		assert.InDelta(t, 7.5, st.FPSMean, 1e-9)
	})

	t.Run("wrapped", func(t *testing.T) {
		m := newMeter(4, clock())
		for i := 0; i < 6; i++ {
			m.Tick()
		}
		assert.Equal(t, uint64(6), m.Count())
		st := m.Stats()
		assert.Equal(t, 4, st.Frames)
		assert.Equal(t, 400*time.Millisecond, st.Duration)
		assert.InDelta(t, 10.0, st.FPSMean, 1e-9)
		assert.True(t, st.Stable)
	})
}

func TestMeter_Concurrent(t *testing.T) {
	m := NewMeter(0)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				m.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(4000), m.Count())
	assert.Equal(t, DefaultCapacity, m.Stats().Frames)
}
