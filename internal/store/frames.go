package store

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler runs a callback at the next frame.
type FrameScheduler interface {
	// RequestFrame schedules fn and returns a function that cancels it.
	// Cancelling after fn has run is a no-op.
	RequestFrame(fn func()) (cancel func())
}

// TimerFrames fires frames on a fixed interval timer.
type TimerFrames struct {
	Interval time.Duration
}

// NewTimerFrames creates a timer scheduler. A non-positive interval uses
// DefaultFrameInterval.
func NewTimerFrames(interval time.Duration) *TimerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerFrames{Interval: interval}
}

// RequestFrame implements FrameScheduler.
func (f *TimerFrames) RequestFrame(fn func()) func() {
	t := time.AfterFunc(f.Interval, fn)
	return func() { t.Stop() }
}

// ManualFrames runs frames only when Advance is called.
type ManualFrames struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]func()
	order   []uint64
}

// NewManualFrames creates a manual scheduler.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{pending: make(map[uint64]func())}
}

// RequestFrame implements FrameScheduler.
func (f *ManualFrames) RequestFrame(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.pending[id] = fn
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.pending, id)
	}
}

// Pending returns the number of callbacks waiting for the next frame.
func (f *ManualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Advance runs every callback scheduled before the call and returns how
// many ran. Callbacks scheduled while advancing wait for the next frame.
func (f *ManualFrames) Advance() int {
	f.mu.Lock()
	order := f.order
	f.order = nil
	fns := make([]func(), 0, len(order))
	for _, id := range order {
		if fn, ok := f.pending[id]; ok {
			fns = append(fns, fn)
			delete(f.pending, id)
		}
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
