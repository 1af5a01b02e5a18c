// Package throughput measures the frame rate leaving the flip filter.
//
// The live preview ticks a Meter from a buffer probe on the filter's src pad
// and reports Stats when the pipeline stops.
package throughput

import (
	"math"
	"time"
)

const (
	// fpsStabilityThreshold is the maximum FPS standard deviation as a
	// fraction of mean FPS (30 FPS mean: stable below 4.5 FPS).
	fpsStabilityThreshold = 0.15

	// jitterStabilityThreshold is the maximum mean jitter as a fraction of
	// the expected inter-frame interval (30 FPS: stable below 6.6ms).
	jitterStabilityThreshold = 0.20
)

// Stats summarises the timing of frames observed over a window
type Stats struct {
	Frames    int
	Duration  time.Duration
	FPSMean   float64
	FPSStdDev float64
	FPSMin    float64
	FPSMax    float64

	JitterMean   float64 // seconds
	JitterStdDev float64 // seconds
	JitterMax    float64 // seconds

	// Stable is true when FPS stddev < 15% of mean and mean jitter < 20%
	// of the expected interval.
	Stable bool
}

// Calculate computes Stats from frame arrival times over a window of the
// given length.
func Calculate(times []time.Time, window time.Duration) Stats {
	st := Stats{Frames: len(times), Duration: window}
	if len(times) == 0 || window <= 0 {
		return st
	}
	st.FPSMean = float64(len(times)) / window.Seconds()

	intervals := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		if d := times[i].Sub(times[i-1]).Seconds(); d > 0 {
			intervals = append(intervals, d)
		}
	}
	if len(intervals) == 0 {
		return st
	}

	instant := make([]float64, len(intervals))
	for i, d := range intervals {
		instant[i] = 1 / d
	}
	st.FPSMin, st.FPSMax = bounds(instant)
	st.FPSStdDev = deviation(instant, st.FPSMean)

	expected := 1 / st.FPSMean
	jitters := make([]float64, len(intervals))
	for i, d := range intervals {
		jitters[i] = math.Abs(d - expected)
	}
	st.JitterMean = mean(jitters)
	_, st.JitterMax = bounds(jitters)
	st.JitterStdDev = deviation(jitters, st.JitterMean)

	st.Stable = st.FPSStdDev < st.FPSMean*fpsStabilityThreshold &&
		st.JitterMean < expected*jitterStabilityThreshold
	return st
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func deviation(xs []float64, around float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += (x - around) * (x - around)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func bounds(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
