package runner

import (
	"sync"
	"time"
)

// Watchdog is a resettable one-shot idle timer. Any qualifying activity
// pushes the deadline forward by the full duration; if the deadline passes
// the fired channel closes, exactly once. A stopped watchdog never fires,
// even if the stop races the timer.
type Watchdog struct {
	duration time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   chan struct{}
}

// NewWatchdog arms a watchdog that fires after d of inactivity.
func NewWatchdog(d time.Duration) *Watchdog {
	w := &Watchdog{
		duration: d,
		fired:    make(chan struct{}),
	}
	w.timer = time.AfterFunc(d, w.fire)
	return w
}

// C is closed when the watchdog fires. One-shot.
func (w *Watchdog) C() <-chan struct{} {
	return w.fired
}

// Reset pushes the deadline forward by the full duration. No-op after the
// watchdog has fired or been stopped.
func (w *Watchdog) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.timer.Stop()
	w.timer.Reset(w.duration)
}

// Stop cancels the watchdog. Idempotent. The race between Stop and the timer
// resolves in favor of Stop: once Stop returns, C never closes.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	w.timer.Stop()
}

// fire runs on the timer goroutine.
func (w *Watchdog) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.fired)
}
