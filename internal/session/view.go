package session

import (
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for view recomputes. Rapid
// filter changes or bursts of resolving titles within this window collapse
// into a single recompute over the latest state.
const DefaultDebounce = 200 * time.Millisecond

// debouncer coalesces repeated triggers into one deferred call to fn.
// fn reads its inputs at fire time, so the coalesced run always sees the
// latest state.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn after the debounce window. Triggers while a run is
// already pending are absorbed.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.timer != nil {
		return
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fn()
		}
	})
}

// Flush runs any pending recompute immediately.
func (d *debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	stopped := d.stopped
	d.mu.Unlock()

	if pending && !stopped {
		d.fn()
	}
}

// Stop cancels any pending recompute and rejects future triggers.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
