package service

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer coalesces bursts of triggers into a single call after a quiet period.
// Only the last trigger within the period runs. A zero delay runs immediately.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   clockwork.Timer
	pending uint64
	closed  bool
}

// NewDebouncer builds a debouncer. A nil clock uses the real clock.
func NewDebouncer(clock clockwork.Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger cancels any pending call and schedules fn. It returns false after Close.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.stopLocked()
	d.pending++
	ticket := d.pending
	if d.delay == 0 {
		d.mu.Unlock()
		fn()
		return true
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A Stop racing with expiry can still let a superseded timer fire.
		stale := d.closed || ticket != d.pending
		if !stale {
			d.timer = nil
		}
		d.mu.Unlock()
		if !stale {
			fn()
		}
	})
	d.mu.Unlock()
	return true
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending++
}

// Close cancels the pending call and rejects further triggers.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
