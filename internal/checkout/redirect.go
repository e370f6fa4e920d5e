package checkout

import (
	"sync"
	"time"
)

// Redirect is a one-shot timer that signals when the confirmation screen
// should hand control back to the catalog. Exactly one of Fired or Stopped
// is closed.
type Redirect struct {
	mu      sync.Mutex
	timer   *time.Timer
	done    bool
	fired   chan struct{}
	stopped chan struct{}
}

// NewRedirect starts a redirect that fires after delay.
func NewRedirect(delay time.Duration) *Redirect {
	r := &Redirect{
		fired:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
	r.mu.Lock()
	r.timer = time.AfterFunc(delay, r.fire)
	r.mu.Unlock()
	return r
}

// Fired is closed when the delay elapses.
func (r *Redirect) Fired() <-chan struct{} {
	return r.fired
}

// Stopped is closed when the redirect is canceled before firing.
func (r *Redirect) Stopped() <-chan struct{} {
	return r.stopped
}

// Cancel stops the redirect. It reports whether the call prevented the
// redirect from firing; canceling twice or after firing is a no-op.
func (r *Redirect) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return false
	}
	r.done = true
	r.timer.Stop()
	close(r.stopped)
	return true
}

func (r *Redirect) fire() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}
	r.done = true
	close(r.fired)
}
