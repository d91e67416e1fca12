// Package debounce provides an instance-owned trailing-edge debouncer.
//
// Each Debouncer owns its timer, so two stores (or two tests) never
// interfere with each other the way a shared module-level timer would.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of calls into a single invocation of the last
// function passed, fired after the quiescence delay elapses with no further
// calls.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// New creates a Debouncer with the given quiescence delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn to run after the delay, cancelling any previously
// scheduled call. fn runs on a timer goroutine.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
