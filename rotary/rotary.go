// Package rotary decodes quadrature rotary encoders from raw edge
// interrupts. A 4-bit history of the pin pair is pushed through a fixed
// transition table that rejects contact bounce; completed detents enqueue
// the user callback with a signed step.
package rotary

import (
	"inputcore-go/errcode"
	"inputcore-go/hw"
)

// Callback receives +1 for a clockwise detent and -1 for a counterclockwise
// one (swapped when the decoder is built with reverse). Runs in task context.
type Callback func(delta int)

// Deferrer enqueues a function for later, non-interrupt-context execution.
type Deferrer interface {
	Schedule(fn func(any), arg any) error
}

// validTransitions marks the 4-bit codes (previous pin pair in the high two
// bits, current pair in the low two) that a bounce-free encoder can produce.
// The other nine codes are noise and leave the state unchanged, so bounce on
// either pin can never walk the history register to a detent code.
var validTransitions = [16]bool{
	0x1: true,
	0x2: true,
	0x3: true,
	0x7: true, // detent, arrived clockwise
	0x8: true,
	0xB: true, // detent, arrived counterclockwise
	0xE: true,
}

const (
	codeCW  = 0x7
	codeCCW = 0xB
)

// Decoder is one encoder instance. Instances are independent; there is no
// shared registry and no removal once built.
type Decoder struct {
	clk  hw.IRQPin
	data hw.IRQPin
	sch  Deferrer
	cb   Callback

	state  uint8
	invert uint8 // XOR mask for the incoming pin pair: 0 or 0b11

	// Pre-boxed deltas so the ISR path never allocates.
	cwDelta  any
	ccwDelta any
}

// New wires edge interrupts on both encoder pins. invert flips the logic
// level of both inputs (active-low wiring); reverse swaps the sign of the
// reported step.
func New(pins hw.PinFactory, sch Deferrer, clkID, dataID int, cb Callback, pull hw.Pull, invert, reverse bool) (*Decoder, error) {
	clk, err := irqPin(pins, clkID)
	if err != nil {
		return nil, err
	}
	data, err := irqPin(pins, dataID)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		clk:      clk,
		data:     data,
		sch:      sch,
		cb:       cb,
		cwDelta:  +1,
		ccwDelta: -1,
	}
	if invert {
		d.invert = 0b11
	}
	if reverse {
		d.cwDelta, d.ccwDelta = d.ccwDelta, d.cwDelta
	}

	if err := clk.ConfigureInput(pull); err != nil {
		return nil, err
	}
	if err := data.ConfigureInput(pull); err != nil {
		return nil, err
	}
	// Both pins share one edge handler; either pin moving advances the
	// history register.
	if err := clk.SetIRQ(hw.EdgeBoth, d.edge); err != nil {
		return nil, err
	}
	if err := data.SetIRQ(hw.EdgeBoth, d.edge); err != nil {
		return nil, err
	}
	return d, nil
}

func irqPin(pins hw.PinFactory, n int) (hw.IRQPin, error) {
	p, ok := pins.ByNumber(n)
	if !ok {
		return nil, errcode.UnknownPin
	}
	ip, ok := p.(hw.IRQPin)
	if !ok {
		return nil, errcode.Unsupported
	}
	return ip, nil
}

// edge runs in interrupt context on every transition of either pin.
func (d *Decoder) edge() {
	var bits uint8
	if d.clk.Get() {
		bits |= 0b01
	}
	if d.data.Get() {
		bits |= 0b10
	}
	bits ^= d.invert

	next := (d.state<<2 | bits) & 0xF
	if !validTransitions[next] {
		// Bounce or noise; keep the previous state.
		return
	}
	d.state = next

	// A dropped deferred call is a missed detent, not an error; the encoder
	// self-corrects on the next one.
	switch next {
	case codeCW:
		_ = d.sch.Schedule(d.emit, d.cwDelta)
	case codeCCW:
		_ = d.sch.Schedule(d.emit, d.ccwDelta)
	}
}

func (d *Decoder) emit(arg any) {
	d.cb(arg.(int))
}
