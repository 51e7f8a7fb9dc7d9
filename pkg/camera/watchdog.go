package camera

import (
	"sync"
	"time"
)

// watchdog is the single rearmable heartbeat timer owned by the session's
// liveness monitor. Reset cancels any previously scheduled firing and
// schedules a new one; exactly one firing is outstanding at any time.
//
// time.Timer.Stop cannot stop a callback that already started, so each
// Reset bumps a generation counter and a firing that lost the race is
// discarded instead of reported. The expire callback receives the firing's
// generation so the owner can re-validate it with Current under its own
// lock before acting on the expiry.
type watchdog struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	expire  func(gen uint64)
	stopped bool
}

// newWatchdog creates a watchdog that calls expire when the armed window
// elapses without a Reset. The watchdog starts disarmed.
func newWatchdog(expire func(gen uint64)) *watchdog {
	return &watchdog{expire: expire}
}

// Reset arms the watchdog for the given window, cancelling any previously
// scheduled firing first.
func (w *watchdog) Reset(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	w.gen++
	gen := w.gen

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(d, func() {
		w.fire(gen)
	})
}

// Stop disarms the watchdog permanently. Safe to call multiple times.
func (w *watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Current reports whether gen is still the latest armed generation.
func (w *watchdog) Current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.stopped && gen == w.gen
}

// fire reports an expiry unless the firing was superseded by a Reset or Stop.
func (w *watchdog) fire(gen uint64) {
	if !w.Current(gen) {
		return
	}
	w.expire(gen)
}
