// Package heartbeat toggles an output pin in a repeating pattern similar to
// a human heartbeat, as a cheap liveness indicator.
package heartbeat

import (
	"time"

	"inputcore-go/errcode"
	"inputcore-go/hw"
	"inputcore-go/sched"
)

// DefaultPattern holds millisecond on/off times: even indexes are "on"
// durations, odd indexes "off". The default adds up to one second but
// neither the length nor the sum is required.
var DefaultPattern = []int{50, 100, 100, 750}

// Heartbeat drives one output pin. Run Beat as a scheduler task.
type Heartbeat struct {
	pin     hw.GPIOPin
	invert  bool
	pattern []int
}

// New configures pinID as an output (initially off). invert marks the pin as
// active low.
func New(pins hw.PinFactory, pinID int, invert bool) (*Heartbeat, error) {
	p, ok := pins.ByNumber(pinID)
	if !ok {
		return nil, errcode.UnknownPin
	}
	h := &Heartbeat{pin: p, invert: invert, pattern: DefaultPattern}
	if err := p.ConfigureOutput(invert); err != nil {
		return nil, err
	}
	return h, nil
}

// SetPattern replaces the blink pattern. Call before starting Beat.
func (h *Heartbeat) SetPattern(ms []int) { h.pattern = ms }

// Beat performs the heartbeat forever. Pass it to the scheduler's
// CreateTask. The pin is held on for two seconds first so board resets are
// clearly visible.
func (h *Heartbeat) Beat(s *sched.Scheduler, _ ...any) {
	h.set(true)
	s.Sleep(2 * time.Second)

	for {
		for i, ms := range h.pattern {
			h.set(i%2 == 0)
			s.SleepMs(ms)
		}
	}
}

func (h *Heartbeat) set(on bool) { h.pin.Set(on != h.invert) }
