//go:build !rp2040 && !rp2350

// Host-side smoke demo: fake pins stand in for hardware, a heartbeat blinks
// and the input service turns simulated button edges and encoder detents
// into bus events.
package main

import (
	"context"
	"time"

	"inputcore-go/bus"
	"inputcore-go/heartbeat"
	"inputcore-go/hw"
	"inputcore-go/sched"
	"inputcore-go/services/input"
	"inputcore-go/types"
)

func main() {
	println("[main] bootstrapping bus and scheduler ...")
	b := bus.New(8)
	pins := &hw.HostPinFactory{}
	s := sched.New(32)

	svc := input.New(b, pins, &hw.TimeTicker{}, s)
	ctx := context.Background()
	s.CreateTask(func(_ *sched.Scheduler, _ ...any) { svc.Run(ctx) })

	if h, err := heartbeat.New(pins, 25, false); err == nil {
		s.CreateTask(h.Beat)
	}

	app := b.NewConnection("demo")
	pinEvents := app.Subscribe(bus.T("input", "pin", "5"))
	knobEvents := app.Subscribe(bus.T("input", "rotary", "knob"))

	println("[main] publishing config/input ...")
	app.Publish(bus.T("config", "input"), &types.InputConfig{
		Pins:     []types.PinSpec{{Pin: 5, Pull: "up", ThresholdMS: 20}},
		Rotaries: []types.RotarySpec{{Name: "knob", ClkPin: 10, DataPin: 11, Pull: "up"}},
	}, true)

	s.CreateTask(func(_ *sched.Scheduler, _ ...any) {
		for m := range pinEvents.Channel() {
			ev := m.Payload.(*types.PinEvent)
			println("[demo] pin", ev.Pin, "settled", ev.Level)
		}
	})
	s.CreateTask(func(_ *sched.Scheduler, _ ...any) {
		for m := range knobEvents.Channel() {
			ev := m.Payload.(*types.RotaryEvent)
			println("[demo] knob", ev.Delta, "position", ev.Position)
		}
	})

	// Simulate a bouncy button press and two encoder detents once the
	// watchers are armed.
	s.CreateTask(func(sc *sched.Scheduler, _ ...any) {
		sc.Sleep(200 * time.Millisecond)
		btn, _ := pins.Get(5)
		btn.Set(true)
		btn.Set(false) // bounce
		btn.Set(true)

		clk, _ := pins.Get(10)
		data, _ := pins.Get(11)
		for i := 0; i < 2; i++ {
			clk.Set(true)
			data.Set(true)
			clk.Set(false)
			data.Set(false)
			sc.SleepMs(10)
		}
	})

	s.RunForever()
}
