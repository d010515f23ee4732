// Package debounce reports stable values for noisy digital inputs. Edge
// interrupts record the raw level and arm a per-pin settle countdown; a 1 ms
// scan, running in task context, counts the thresholds down and fires the
// user callback once per settled change.
package debounce

import (
	"sync/atomic"
	"time"

	"inputcore-go/errcode"
	"inputcore-go/hw"
	"inputcore-go/x/mathx"
)

// ScanPeriod is the settle-check tick interval.
const ScanPeriod = time.Millisecond

// DefaultThresholdMS is used when Watch is given a zero threshold.
const DefaultThresholdMS = 20

// Callback delivers a settled pin value. It runs in task context.
type Callback func(pin int, level bool)

// Deferrer enqueues a function for later, non-interrupt-context execution.
// Schedule must be callable from interrupt context and may fail when its
// queue is full.
type Deferrer interface {
	Schedule(fn func(any), arg any) error
}

// liveness flag for the settle timer. Three states (not two) so the scan can
// tell "nothing left to do" apart from "new work arrived while scanning"
// without ever stopping the timer under a pending edge.
type liveState uint8

const (
	liveIdle     liveState = iota // no debounce job pending, timer stopped
	liveActive                    // at least one job pending, timer running
	liveDraining                  // scan in progress, no job seen yet
)

const waitNone = int32(-1)

// watcher is the per-pin debounce record. wait and raw are written from
// interrupt context and therefore accessed atomically.
type watcher struct {
	id        int
	pin       hw.IRQPin
	cb        Callback
	threshold int32

	wait int32 // settle countdown in ticks; waitNone when not debouncing
	raw  int32 // last level observed at an edge (0/1)

	reported   bool // last value delivered to the callback
	haveReport bool
}

func (w *watcher) rawLevel() bool { return atomic.LoadInt32(&w.raw) != 0 }

func (w *watcher) setRaw(level bool) {
	var v int32
	if level {
		v = 1
	}
	atomic.StoreInt32(&w.raw, v)
}

// Coordinator owns the watched pins, the liveness flag and the settle timer.
// Registration is append-only; watchers live as long as the coordinator.
type Coordinator struct {
	sch  Deferrer
	tick hw.Ticker
	pins hw.PinFactory

	// byPin detects duplicates; list is what the scan walks. Both are
	// guarded by interrupt masking so registration can race an active scan
	// on hosted builds, where the two run on different goroutines.
	byPin map[int]*watcher
	list  []*watcher

	// Shared with interrupt context; guarded by interrupt masking.
	live liveState
}

// New creates a coordinator using the given deferred-call queue, settle
// timer and pin factory.
func New(sch Deferrer, tick hw.Ticker, pins hw.PinFactory) *Coordinator {
	return &Coordinator{
		sch:   sch,
		tick:  tick,
		pins:  pins,
		byPin: map[int]*watcher{},
	}
}

// Watch registers a pin to be debounced. cb receives the pin number and the
// settled level after it has kept the same value for thresholdMS ticks.
// Registering a pin twice fails with PinInUse; there is no unregistration.
func (c *Coordinator) Watch(pinID int, cb Callback, pull hw.Pull, thresholdMS int) error {
	st := hw.DisableInterrupts()
	_, exists := c.byPin[pinID]
	hw.RestoreInterrupts(st)
	if exists {
		return errcode.PinInUse
	}
	p, ok := c.pins.ByNumber(pinID)
	if !ok {
		return errcode.UnknownPin
	}
	irqPin, ok := p.(hw.IRQPin)
	if !ok {
		return errcode.Unsupported
	}
	if thresholdMS == 0 {
		thresholdMS = DefaultThresholdMS
	}
	thresholdMS = mathx.Clamp(thresholdMS, 1, 60_000)

	w := &watcher{
		id:        pinID,
		pin:       irqPin,
		cb:        cb,
		threshold: int32(thresholdMS),
		wait:      waitNone,
	}
	if err := irqPin.ConfigureInput(pull); err != nil {
		return err
	}

	// Edge ISR: record the level, arm the countdown, poke the timer. A full
	// deferred-call queue drops the poke; the value is still recorded and a
	// later edge or an already-running timer recovers.
	handler := func() {
		w.setRaw(irqPin.Get())
		atomic.StoreInt32(&w.wait, w.threshold)
		_ = c.sch.Schedule(c.wake, w)
	}
	if err := irqPin.SetIRQ(hw.EdgeBoth, handler); err != nil {
		return err
	}

	st = hw.DisableInterrupts()
	c.byPin[pinID] = w
	c.list = append(c.list, w)
	hw.RestoreInterrupts(st)
	return nil
}

// wake runs in task context whenever an edge was seen; it makes sure the
// settle timer is running.
func (c *Coordinator) wake(any) {
	st := hw.DisableInterrupts()
	if c.live == liveIdle {
		_ = c.tick.Start(ScanPeriod, c.onTick)
	}
	// Whatever this was before, now there is at least one job running.
	c.live = liveActive
	hw.RestoreInterrupts(st)
}

// onTick is the settle-timer interrupt; it only queues a scan.
func (c *Coordinator) onTick() {
	_ = c.sch.Schedule(c.scan, nil)
}

// scan runs in task context roughly every tick while any watcher is live.
func (c *Coordinator) scan(any) {
	c.live = liveDraining

	// Snapshot the list header so a concurrent registration cannot race the
	// walk; entries already published stay valid because registration is
	// append-only.
	st := hw.DisableInterrupts()
	ws := c.list
	hw.RestoreInterrupts(st)

	for _, w := range ws {
		wait := atomic.LoadInt32(&w.wait)
		if wait == waitNone {
			continue
		}
		if wait <= 0 {
			// Settled, unless a fresh edge re-armed the countdown since the
			// load; that edge also queued a wake, so losing this round is
			// harmless.
			if !atomic.CompareAndSwapInt32(&w.wait, wait, waitNone) {
				continue
			}
			raw := w.rawLevel()
			if !w.haveReport || raw != w.reported {
				w.haveReport = true
				w.reported = raw
				w.cb(w.id, raw)
			}
		} else {
			atomic.CompareAndSwapInt32(&w.wait, wait, wait-1)
			// At least one running job left.
			c.live = liveActive
		}
	}

	// If no debounce job remains and no edge arrived meanwhile, stop the
	// timer.
	st = hw.DisableInterrupts()
	if c.live == liveDraining {
		c.live = liveIdle
		c.tick.Stop()
	}
	hw.RestoreInterrupts(st)
}
