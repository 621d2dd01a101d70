package preview

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after free-text edits before a preview is requested.
const DefaultDebounce = 1000 * time.Millisecond

// Debouncer coalesces bursts of Trigger calls into one call of fn, made once no
// Trigger has arrived for the window.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	seq     uint64
}

// NewDebouncer returns a debouncer that calls fn after window of quiet.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window, fn: fn}
}

// Trigger restarts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// Flush runs a pending call immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

// Pending reports whether a call is waiting for the window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}

// fire runs fn unless a later Trigger superseded seq.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}
