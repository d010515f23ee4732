// Package hw is the platform capability boundary: everything the input core
// needs from the host hardware, expressed as small interfaces with
// build-tagged default implementations (RP2 family and host fakes).
package hw

import (
	"time"

	"tinygo.org/x/drivers"
)

// Pull selects the input pull resistor configuration.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// GPIOPin is a single digital pin.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// IRQPin extends GPIOPin with edge interrupts. The handler runs in interrupt
// context: it must not block, allocate, or take unbounded time.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// I2CBusFactory injects configured I²C instances by id.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// Ticker is a periodic timer whose callback fires in interrupt context (or
// the closest the platform offers). Start while running reports Busy.
type Ticker interface {
	Start(period time.Duration, fn func()) error
	Stop()
}
