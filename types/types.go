// Package types holds the configuration and event payloads carried on the
// bus, shared between services and application code.
package types

// PinSpec configures one debounced input pin.
type PinSpec struct {
	Pin         int
	Pull        string // "up", "down" or "none"
	ThresholdMS int    // 0 selects the default settle threshold
}

// RotarySpec configures one quadrature encoder.
type RotarySpec struct {
	Name    string
	ClkPin  int
	DataPin int
	Pull    string
	Invert  bool // active-low wiring
	Reverse bool // swap the sign of reported steps
}

// InputConfig is the retained payload on config/input. Updates are additive:
// pins and encoders already built stay as they are.
type InputConfig struct {
	Pins     []PinSpec
	Rotaries []RotarySpec
}

// PinEvent is published on input/pin/<n> when a watched pin settles.
type PinEvent struct {
	Pin    int
	Level  bool
	TimeMs int64
}

// RotaryEvent is published on input/rotary/<name> once per detent.
type RotaryEvent struct {
	Name     string
	Delta    int
	Position int // running sum of deltas since the encoder was built
	TimeMs   int64
}
