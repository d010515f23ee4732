package hw

import (
	"sync"
	"time"

	"inputcore-go/errcode"
)

// TimeTicker implements Ticker on top of time.Ticker. On TinyGo the callback
// fires on the runtime scheduler rather than a hardware timer interrupt; the
// consumers in this module only enqueue deferred work from it, so either
// context is acceptable.
type TimeTicker struct {
	mu   sync.Mutex
	stop chan struct{}
}

var _ Ticker = (*TimeTicker)(nil)

func (t *TimeTicker) Start(period time.Duration, fn func()) error {
	if period <= 0 {
		return errcode.InvalidParams
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return errcode.Busy
	}
	stop := make(chan struct{})
	t.stop = stop
	go func() {
		tick := time.NewTicker(period)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				fn()
			}
		}
	}()
	return nil
}

func (t *TimeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
