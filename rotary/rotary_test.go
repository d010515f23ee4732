package rotary

import (
	"testing"

	"inputcore-go/errcode"
	"inputcore-go/hw"
)

// inlineDeferrer runs deferred calls immediately; full simulates overflow.
type inlineDeferrer struct {
	full bool
}

func (d *inlineDeferrer) Schedule(fn func(any), arg any) error {
	if d.full {
		return errcode.QueueFull
	}
	fn(arg)
	return nil
}

type encoderRig struct {
	t      *testing.T
	pins   *hw.HostPinFactory
	def    *inlineDeferrer
	clk    *hw.FakePin
	data   *hw.FakePin
	deltas []int
}

func newEncoderRig(t *testing.T, invert, reverse bool) *encoderRig {
	r := &encoderRig{t: t, pins: &hw.HostPinFactory{}, def: &inlineDeferrer{}}

	// Materialise the pins first so idle levels can be set before the
	// decoder arms its interrupts.
	r.pins.ByNumber(10)
	r.pins.ByNumber(11)
	r.clk, _ = r.pins.Get(10)
	r.data, _ = r.pins.Get(11)
	if invert {
		// Active-low wiring idles with both lines high.
		r.clk.Set(true)
		r.data.Set(true)
	}

	_, err := New(r.pins, r.def, 10, 11, func(delta int) {
		r.deltas = append(r.deltas, delta)
	}, hw.PullUp, invert, reverse)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

// cwCycle walks the pin pair through one full clockwise detent.
func (r *encoderRig) cwCycle() {
	r.clk.Set(true)   // pair 01
	r.data.Set(true)  // pair 11, detent
	r.clk.Set(false)  // pair 10
	r.data.Set(false) // pair 00
}

// ccwCycle walks one full counterclockwise detent.
func (r *encoderRig) ccwCycle() {
	r.data.Set(true)  // pair 10
	r.clk.Set(true)   // pair 11, detent
	r.data.Set(false) // pair 01
	r.clk.Set(false)  // pair 00
}

func TestTableRejectsNineCodes(t *testing.T) {
	invalid := 0
	for _, ok := range validTransitions {
		if !ok {
			invalid++
		}
	}
	if invalid != 9 {
		t.Fatalf("invalid transition codes = %d, want 9", invalid)
	}
	if !validTransitions[codeCW] || !validTransitions[codeCCW] {
		t.Fatal("detent codes must be valid transitions")
	}
}

func TestClockwiseDetent(t *testing.T) {
	r := newEncoderRig(t, false, false)
	r.cwCycle()
	if len(r.deltas) != 1 || r.deltas[0] != 1 {
		t.Fatalf("deltas = %v, want [1]", r.deltas)
	}
	// Repeats keep firing once per detent.
	r.cwCycle()
	r.cwCycle()
	if len(r.deltas) != 3 {
		t.Fatalf("deltas = %v, want three +1 steps", r.deltas)
	}
}

func TestCounterClockwiseDetent(t *testing.T) {
	r := newEncoderRig(t, false, false)
	r.ccwCycle()
	if len(r.deltas) != 1 || r.deltas[0] != -1 {
		t.Fatalf("deltas = %v, want [-1]", r.deltas)
	}
	r.ccwCycle()
	if len(r.deltas) != 2 || r.deltas[1] != -1 {
		t.Fatalf("deltas = %v, want two -1 steps", r.deltas)
	}
}

func TestReverseSwapsSign(t *testing.T) {
	r := newEncoderRig(t, false, true)
	r.cwCycle()
	r.ccwCycle()
	if len(r.deltas) != 2 || r.deltas[0] != -1 || r.deltas[1] != 1 {
		t.Fatalf("deltas = %v, want [-1 1]", r.deltas)
	}
}

func TestInvertedWiring(t *testing.T) {
	r := newEncoderRig(t, true, false)
	// Active-low clockwise walk: electrical levels are the complement of
	// the logical pair sequence.
	r.clk.Set(false)  // logical pair 01
	r.data.Set(false) // logical pair 11, detent
	r.clk.Set(true)   // logical pair 10
	r.data.Set(true)  // logical pair 00
	if len(r.deltas) != 1 || r.deltas[0] != 1 {
		t.Fatalf("deltas = %v, want [1]", r.deltas)
	}
}

func TestBounceDoesNotFire(t *testing.T) {
	r := newEncoderRig(t, false, false)
	// Contact bounce on clk alone: 0-1-0-1-0. The first edge is a valid
	// transition, everything after is rejected, and no detent is reached.
	for i := 0; i < 5; i++ {
		r.clk.Set(i%2 == 0)
	}
	if len(r.deltas) != 0 {
		t.Fatalf("bounce produced deltas: %v", r.deltas)
	}
}

func TestDroppedDetentIsSilent(t *testing.T) {
	r := newEncoderRig(t, false, false)
	r.def.full = true
	r.cwCycle()
	if len(r.deltas) != 0 {
		t.Fatalf("deltas = %v, want none while queue is full", r.deltas)
	}
	// The state machine keeps tracking; the next detent is delivered.
	r.def.full = false
	r.cwCycle()
	if len(r.deltas) != 1 || r.deltas[0] != 1 {
		t.Fatalf("deltas = %v, want [1] after recovery", r.deltas)
	}
}

func TestUnknownPin(t *testing.T) {
	def := &inlineDeferrer{}
	if _, err := New(noPins{}, def, 1, 2, func(int) {}, hw.PullNone, false, false); err != errcode.UnknownPin {
		t.Fatalf("err = %v, want UnknownPin", err)
	}
}

type noPins struct{}

func (noPins) ByNumber(int) (hw.GPIOPin, bool) { return nil, false }
