package throughput

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the timestamps a Meter keeps (about one minute at
// 30 FPS).
const DefaultCapacity = 1800

// Meter records frame arrival times from a streaming thread. Only the most
// recent timestamps are kept; Count covers every tick.
type Meter struct {
	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	times   []time.Time
	next    int
	full    bool
	counted uint64
}

// NewMeter returns a meter keeping up to capacity timestamps. A capacity
// below 2 uses DefaultCapacity.
func NewMeter(capacity int) *Meter {
	return newMeter(capacity, time.Now)
}

func newMeter(capacity int, now func() time.Time) *Meter {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Meter{now: now, start: now(), times: make([]time.Time, capacity)}
}

// Tick records one frame. Safe to call from a pad probe.
func (m *Meter) Tick() {
	t := m.now()
	m.mu.Lock()
	m.times[m.next] = t
	m.next++
	if m.next == len(m.times) {
		m.next = 0
		m.full = true
	}
	m.counted++
	m.mu.Unlock()
}

// Count returns the number of ticks since the meter was created.
func (m *Meter) Count() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counted
}

// Stats computes Stats over the retained timestamps. The window runs from
// the oldest retained tick (or meter creation, when nothing was dropped) to
// now.
func (m *Meter) Stats() Stats {
	now := m.now()
	m.mu.Lock()
	var times []time.Time
	from := m.start
	if m.full {
		times = append(times, m.times[m.next:]...)
		times = append(times, m.times[:m.next]...)
		from = times[0]
	} else {
		times = append(times, m.times[:m.next]...)
	}
	m.mu.Unlock()
	return Calculate(times, now.Sub(from))
}
