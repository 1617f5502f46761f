package datatable

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long search input must stay unchanged before
// it becomes part of the query
const DefaultQuietPeriod = 500 * time.Millisecond

// Timer is a scheduled call that can be stopped
type Timer interface {
	Stop() bool
}

// Clock schedules calls. Tests substitute a clock they advance by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules on the runtime timer
type RealClock struct{}

// AfterFunc wraps time.AfterFunc
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs at most one pending task. Scheduling a new task cancels
// the previous one and restarts the quiet period.
type Debouncer struct {
	clock Clock
	quiet time.Duration

	mu      sync.Mutex
	seq     uint64
	timer   Timer
	pending func()
}

// NewDebouncer creates a debouncer. A nil clock uses RealClock and a
// non-positive quiet period uses DefaultQuietPeriod.
func NewDebouncer(clock Clock, quiet time.Duration) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{clock: clock, quiet: quiet}
}

// QuietPeriod returns the configured delay
func (d *Debouncer) QuietPeriod() time.Duration {
	return d.quiet
}

// Schedule replaces any pending task with f
func (d *Debouncer) Schedule(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.pending = f
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		// superseded or cancelled after the timer had already fired
		d.mu.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	f()
}

// Cancel discards the pending task, if any. It reports whether a task was
// discarded.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	return had
}

// Flush runs the pending task immediately. It reports whether one ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	f := d.pending
	d.stopLocked()
	d.mu.Unlock()

	if f == nil {
		return false
	}
	f()
	return true
}

// Pending reports whether a task is waiting for the quiet period to end
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.seq++
}
